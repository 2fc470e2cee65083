// Package chunker adapts github.com/bobg/hashsplit's rolling-hash splitter
// into the engine's multilevel content-defined chunking contract: an
// ascending sequence of (position, level) boundaries where a level-L
// boundary is by construction also a boundary at every level below it,
// since hashsplit's level is the count of trailing zero bits of the rolling
// hash above a floor, and "at least L+1 bits" implies "at least L bits".
package chunker

import (
	"math/bits"

	"github.com/bobg/hashsplit"
)

// WindowSize is the chunker's rolling-hash window, matching the historical
// 48-byte Rabin-Karp default this engine's chunking approach descends from.
const WindowSize = 48

// Boundary is a single content-defined split point: byte offset Position,
// and the highest tree Level whose superchunk closes at that offset.
type Boundary struct {
	Position int64
	Level    int
}

// Chunker produces boundary streams for a fixed ladder of target chunk
// sizes, one per tree level.
type Chunker struct {
	splitBits uint
	levelBits uint
	maxLevel  int
}

// New builds a Chunker for the given target chunk sizes, indexed by level
// (chunkSizes[0] is the leaf target size cs(0), chunkSizes[1] is cs(1), and
// so on). SplitBits is derived from log2(cs(0)); the per-level bit stride is
// derived from log2(cs(1)/cs(0)), which equals log2(S/R) under the default
// schedule since cs(L)/cs(L-1) = S/R for every L.
func New(chunkSizes []int64) *Chunker {
	c := &Chunker{maxLevel: len(chunkSizes) - 1, levelBits: 1}
	if len(chunkSizes) > 0 && chunkSizes[0] > 1 {
		c.splitBits = log2Floor(chunkSizes[0])
	}
	if len(chunkSizes) > 1 && chunkSizes[0] > 0 {
		if ratio := chunkSizes[1] / chunkSizes[0]; ratio > 1 {
			c.levelBits = log2Floor(ratio)
		}
	}
	if c.levelBits == 0 {
		c.levelBits = 1
	}
	return c
}

func log2Floor(n int64) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len64(uint64(n))) - 1
}

// WindowSize returns the chunker's rolling-hash window size.
func (c *Chunker) WindowSize() int { return WindowSize }

// Boundaries returns the ascending (position, level) boundary stream for
// data. skip sentinel zero bytes are fed to the splitter ahead of data so
// that boundary emission is deterministic from byte zero of data regardless
// of what a caller's full stream looks like before it; reported positions
// are relative to the start of data, with any boundary that fell entirely
// inside the sentinel region dropped.
func (c *Chunker) Boundaries(data []byte, skip int) ([]Boundary, error) {
	var bounds []Boundary
	var pos int64

	spl := hashsplit.NewSplitter(func(chunk []byte, level uint) error {
		pos += int64(len(chunk))
		mapped := int(level / c.levelBits)
		if mapped > c.maxLevel {
			mapped = c.maxLevel
		}
		if p := pos - int64(skip); p > 0 {
			bounds = append(bounds, Boundary{Position: p, Level: mapped})
		}
		return nil
	})
	spl.MinSize = 1
	spl.SplitBits = c.splitBits

	if skip > 0 {
		if _, err := spl.Write(make([]byte, skip)); err != nil {
			return nil, err
		}
	}
	if _, err := spl.Write(data); err != nil {
		return nil, err
	}
	if err := spl.Close(); err != nil {
		return nil, err
	}
	return bounds, nil
}
