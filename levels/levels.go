// Package levels derives chunk-tree height from content length and target
// chunk size from tree level.
//
// Both functions are pure and cached per Schedule instance: height_for is
// monotonic non-decreasing in its argument, chunksize_for is strictly
// increasing in its argument under the default formula. Height computation
// deliberately avoids floating point: the default schedule walks integer
// thresholds S*(S/R)^L instead of taking a real logarithm, so the bucket a
// length falls into is byte-exact across platforms.
package levels

import (
	"math/big"
	"sync"
)

// HeightFunc maps a content length to a chunk-tree height.
type HeightFunc func(length int64) int

// ChunkSizeFunc maps a chunk-tree level to a target chunk size.
type ChunkSizeFunc func(level int) int64

// Schedule memoizes the height-for-length and chunksize-for-level functions
// for one engine instance.
type Schedule struct {
	s, r int64

	heightFn    HeightFunc
	chunkSizeFn ChunkSizeFunc

	mu           sync.Mutex
	heightCache  map[int64]int
	chunkCache   map[int]int64
}

// Option configures a Schedule at construction.
type Option func(*Schedule)

// WithHeightFunc overrides the default length-to-height function.
func WithHeightFunc(fn HeightFunc) Option {
	return func(s *Schedule) { s.heightFn = fn }
}

// WithChunkSizeFunc overrides the default height-to-chunksize function. When
// such an override is configured, config.New waives the S >= 2R
// precondition.
func WithChunkSizeFunc(fn ChunkSizeFunc) Option {
	return func(s *Schedule) { s.chunkSizeFn = fn }
}

// New builds a Schedule for target chunk size s and digest size r. Neither
// override is validated here; config.New is responsible for the S >= 2R
// precondition.
func New(s, r int64, opts ...Option) *Schedule {
	sch := &Schedule{
		s:           s,
		r:           r,
		heightCache: make(map[int64]int),
		chunkCache:  make(map[int]int64),
	}
	for _, opt := range opts {
		opt(sch)
	}
	if sch.chunkSizeFn == nil {
		sch.chunkSizeFn = sch.defaultChunkSizeFor
	}
	if sch.heightFn == nil {
		sch.heightFn = sch.defaultHeightFor
	}
	return sch
}

// HeightFor returns the chunk-tree height for a content of the given length.
func (sch *Schedule) HeightFor(length int64) int {
	sch.mu.Lock()
	if h, ok := sch.heightCache[length]; ok {
		sch.mu.Unlock()
		return h
	}
	sch.mu.Unlock()

	h := sch.heightFn(length)

	sch.mu.Lock()
	sch.heightCache[length] = h
	sch.mu.Unlock()
	return h
}

// ChunkSizeFor returns the target chunk size for a given tree level.
func (sch *Schedule) ChunkSizeFor(level int) int64 {
	sch.mu.Lock()
	if cs, ok := sch.chunkCache[level]; ok {
		sch.mu.Unlock()
		return cs
	}
	sch.mu.Unlock()

	cs := sch.chunkSizeFn(level)

	sch.mu.Lock()
	sch.chunkCache[level] = cs
	sch.mu.Unlock()
	return cs
}

// defaultChunkSizeFor computes cs(L) = S^(L+1) / R^L using exact integer
// arithmetic (no compounding of rounding across levels).
func (sch *Schedule) defaultChunkSizeFor(level int) int64 {
	num := big.NewInt(sch.s)
	num.Exp(num, big.NewInt(int64(level+1)), nil)
	if level == 0 {
		return num.Int64()
	}
	den := big.NewInt(sch.r)
	den.Exp(den, big.NewInt(int64(level)), nil)
	num.Div(num, den)
	return num.Int64()
}

// defaultHeightFor finds the smallest h such that length <= cs(h), which is
// equivalent to ceil(log(length/S) / log(S/R)) clamped at 0, without ever
// evaluating a logarithm.
func (sch *Schedule) defaultHeightFor(length int64) int {
	if length == 0 {
		return 0
	}
	h := 0
	for length > sch.ChunkSizeFor(h) {
		h++
	}
	return h
}
