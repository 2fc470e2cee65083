// Package chunktree is the chunk-tree engine: it decomposes contents into a
// content-defined multi-level Merkle-style tree, stores each node under a
// cryptographic digest in a pluggable backend, reference-counts shared
// nodes, and provides insert / retrieve / delete with exact storage
// reclamation.
//
// The engine holds no in-memory state between calls other than its
// configuration; it assumes single-writer access to its backend and
// performs no internal locking beyond what the backend itself provides.
package chunktree

import (
	"time"

	"github.com/luxfi/seccs/chunker"
	"github.com/luxfi/seccs/config"
	"github.com/luxfi/seccs/handle"
	"github.com/luxfi/seccs/levels"
	scslog "github.com/luxfi/seccs/log"
	"github.com/luxfi/seccs/metrics"
	"github.com/luxfi/seccs/refcount"
	"github.com/luxfi/seccs/store"
	"github.com/luxfi/seccs/wrapper"
)

// MultilevelChunker is the chunker capability the engine depends on: given
// data and a count of leading zero sentinel bytes to feed ahead of it,
// produce an ascending (position, level) boundary stream.
type MultilevelChunker interface {
	Boundaries(data []byte, skip int) ([]chunker.Boundary, error)
	WindowSize() int
}

// ChunkerFactory builds a MultilevelChunker for a specific content's ladder
// of per-level target chunk sizes.
type ChunkerFactory func(levelChunkSizes []int64) MultilevelChunker

func defaultChunkerFactory(sizes []int64) MultilevelChunker {
	return chunker.New(sizes)
}

// Engine is the public chunk-tree engine.
type Engine struct {
	schedule   *levels.Schedule
	backend    store.KVStore
	wrapper    wrapper.CryptoWrapper
	rc         refcount.Counter
	chunkerFac ChunkerFactory
	digestSize int

	logger  scslog.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithReferenceCounter overrides the default key-suffix reference counter
// (which overlays counters onto the content backend under k||"r").
func WithReferenceCounter(rc refcount.Counter) Option {
	return func(e *Engine) { e.rc = rc }
}

// WithChunkerFactory overrides the default bobg/hashsplit-backed chunker.
func WithChunkerFactory(f ChunkerFactory) Option {
	return func(e *Engine) { e.chunkerFac = f }
}

// WithLogger sets the engine's structured logger. A nil Logger behaves the
// same as not calling this option.
func WithLogger(l scslog.Logger) Option {
	return func(e *Engine) { e.logger = scslog.OrNoOp(l) }
}

// WithMetrics attaches a Prometheus collector set to the engine.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New constructs an Engine. cfg.ChunkSize must be at least twice cw's digest
// size unless cfg carries a HeightToChunkSizeFn override (config.New is
// responsible for enforcing and waiving this precondition).
func New(cfg *config.Config, backend store.KVStore, cw wrapper.CryptoWrapper, opts ...Option) (*Engine, error) {
	var schedOpts []levels.Option
	if cfg.LengthToHeightFn != nil {
		fn := cfg.LengthToHeightFn
		schedOpts = append(schedOpts, levels.WithHeightFunc(func(length int64) int { return fn(length) }))
	}
	if cfg.HeightToChunkSizeFn != nil {
		fn := cfg.HeightToChunkSizeFn
		schedOpts = append(schedOpts, levels.WithChunkSizeFunc(func(level int) int64 { return fn(level) }))
	}

	e := &Engine{
		schedule:   levels.New(cfg.ChunkSize, int64(cw.DigestSize()), schedOpts...),
		backend:    backend,
		wrapper:    cw,
		digestSize: cw.DigestSize(),
		chunkerFac: defaultChunkerFactory,
		logger:     scslog.NewNoOpLogger(),
	}
	e.rc = refcount.NewKeySuffixCounter(backend, "r")

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// PutContent inserts m and returns its handle.
func (e *Engine) PutContent(m []byte, ignoreRootRC bool) ([]byte, error) {
	h, _, err := e.PutContentAndCheckIfNew(m, ignoreRootRC)
	return h, err
}

// PutContentAndCheckIfNew inserts m and reports whether the root was newly
// created (false if an identical content already existed).
func (e *Engine) PutContentAndCheckIfNew(m []byte, ignoreRootRC bool) (hdl []byte, isNew bool, err error) {
	if e.metrics != nil {
		start := time.Now()
		defer func() { e.metrics.PutDuration.Observe(time.Since(start).Seconds()) }()
	}

	l := int64(len(m))
	h := e.schedule.HeightFor(l)

	var root []byte
	if h == 0 {
		root, isNew, err = e.storeNode(m, 0, 0, nil)
	} else {
		root, isNew, err = e.putChunked(m, h)
	}
	if err != nil {
		return nil, false, err
	}

	if !ignoreRootRC {
		if _, err := e.rc.Inc(root); err != nil {
			return nil, false, err
		}
	}
	if e.metrics != nil {
		if isNew {
			e.metrics.NodesStored.Inc()
		} else {
			e.metrics.NodesDeduped.Inc()
		}
	}
	e.logger.Debug("put_content", "length", l, "height", h, "is_new", isNew)
	return handle.Encode(root, uint64(l)), isNew, nil
}

// putChunked builds and stores a multi-level tree for m, whose height is h
// (h > 0). It reproduces the boundary protocol exactly: a sentinel leading
// boundary at (0, h-1), the chunker's own boundary stream, and a forced
// terminal boundary at (len(m), h-1).
func (e *Engine) putChunked(m []byte, h int) (root []byte, isNew bool, err error) {
	sizes := make([]int64, h)
	for l := 0; l < h; l++ {
		sizes[l] = e.schedule.ChunkSizeFor(l)
	}
	ck := e.chunkerFac(sizes)

	raw, err := ck.Boundaries(m, ck.WindowSize()-1)
	if err != nil {
		return nil, false, err
	}

	type boundary struct {
		pos   int64
		level int
	}
	bounds := make([]boundary, 0, len(raw)+2)
	bounds = append(bounds, boundary{pos: 0, level: h - 1})
	for _, b := range raw {
		bounds = append(bounds, boundary{pos: b.Position, level: b.Level})
	}
	if len(bounds) > 0 && bounds[len(bounds)-1].pos == int64(len(m)) {
		bounds = bounds[:len(bounds)-1]
	}
	bounds = append(bounds, boundary{pos: int64(len(m)), level: h - 1})

	levelBuf := make([][][]byte, h+1)
	for i := 0; i < len(bounds)-1; i++ {
		start, end := bounds[i].pos, bounds[i+1].pos
		boundaryHeight := bounds[i+1].level

		leafDigest, _, err := e.storeNode(m[start:end], 0, h, nil)
		if err != nil {
			return nil, false, err
		}
		levelBuf[1] = append(levelBuf[1], leafDigest)

		for lvl := 1; lvl <= boundaryHeight; lvl++ {
			children := levelBuf[lvl]
			serialized := concatDigests(children)
			digest, _, err := e.storeNode(serialized, lvl, h, children)
			if err != nil {
				return nil, false, err
			}
			levelBuf[lvl+1] = append(levelBuf[lvl+1], digest)
			levelBuf[lvl] = nil
		}
	}

	rootChildren := levelBuf[h]
	return e.storeNode(concatDigests(rootChildren), h, h, rootChildren)
}

// storeNode implements store_node (spec §4.6.1): wrap serialized, dedup
// against an existing verified node, otherwise bump children's reference
// counts and write.
func (e *Engine) storeNode(serialized []byte, height, rootHeight int, children [][]byte) (digest []byte, isNew bool, err error) {
	cipher, digest, err := e.wrapper.Wrap(serialized, height, height == rootHeight)
	if err != nil {
		return nil, false, err
	}

	exists, err := e.backend.Contains(digest)
	if err != nil {
		return nil, false, err
	}
	if exists {
		matched, err := e.verifyExisting(digest, height, rootHeight)
		if err != nil {
			return nil, false, err
		}
		if matched {
			if e.metrics != nil {
				e.metrics.NodesDeduped.Inc()
			}
			return digest, false, nil
		}
	}

	if children != nil {
		for _, child := range children {
			if _, err := e.rc.Inc(child); err != nil {
				return nil, false, err
			}
		}
	}
	if err := e.backend.Put(digest, cipher); err != nil {
		return nil, false, err
	}
	return digest, true, nil
}

// verifyExisting probes whether the node already stored under digest is
// retrievable under these same position parameters. A wrapper error or a
// null (unkeyed-integrity) result is treated as "not a match" rather than
// propagated, since a matching digest collision would itself break the
// wrapper (spec §7, §9).
func (e *Engine) verifyExisting(digest []byte, height, rootHeight int) (bool, error) {
	cipher, err := e.backend.Get(digest)
	if err != nil {
		if err == store.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	plain, err := e.wrapper.Unwrap(cipher, digest, height, height == rootHeight, -1)
	if err != nil {
		return false, nil
	}
	return plain != nil, nil
}

// GetContent retrieves the content referenced by hdl.
func (e *Engine) GetContent(hdl []byte) ([]byte, error) {
	if e.metrics != nil {
		start := time.Now()
		defer func() { e.metrics.GetDuration.Observe(time.Since(start).Seconds()) }()
	}

	digest, length, err := handle.Decode(hdl, e.digestSize)
	if err != nil {
		return nil, err
	}
	h := e.schedule.HeightFor(int64(length))

	digests := [][]byte{digest}
	for lvl := h; lvl >= 1; lvl-- {
		var next [][]byte
		for _, k := range digests {
			children, err := e.readChildren(k, lvl, h)
			if err != nil {
				return nil, err
			}
			next = append(next, children...)
		}
		digests = next
	}

	out := make([]byte, 0, length)
	for _, k := range digests {
		leaf, err := e.readNode(k, 0, h)
		if err != nil {
			return nil, err
		}
		out = append(out, leaf...)
	}
	e.logger.Debug("get_content", "length", length, "height", h)
	return out, nil
}

// DeleteContent removes the content referenced by hdl, decrementing its
// root reference count first unless ignoreRootRC is set.
func (e *Engine) DeleteContent(hdl []byte, ignoreRootRC bool) error {
	if e.metrics != nil {
		start := time.Now()
		defer func() { e.metrics.DeleteDuration.Observe(time.Since(start).Seconds()) }()
	}

	digest, length, err := handle.Decode(hdl, e.digestSize)
	if err != nil {
		return err
	}
	h := e.schedule.HeightFor(int64(length))

	if !ignoreRootRC {
		n, err := e.rc.Dec(digest)
		if err != nil {
			return err
		}
		if n != 0 {
			return nil
		}
	}
	e.logger.Debug("delete_content", "length", length, "height", h)
	return e.deleteNode(digest, h, h)
}

// deleteNode implements delete_node (spec §4.6.6): recursively dec children
// whose count reaches zero before physically removing k.
func (e *Engine) deleteNode(k []byte, height, rootHeight int) error {
	if height > 0 {
		children, err := e.readChildren(k, height, rootHeight)
		if err != nil {
			return err
		}
		for _, child := range children {
			n, err := e.rc.Dec(child)
			if err != nil {
				return err
			}
			if n == 0 {
				if err := e.deleteNode(child, height-1, rootHeight); err != nil {
					return err
				}
			}
		}
	}
	if e.metrics != nil {
		e.metrics.NodesDeleted.Inc()
	}
	return e.backend.Delete(k)
}

// readNode fetches and unwraps a node's payload. A null (unkeyed-integrity)
// result is surfaced to the caller as an IntegrityError, since this path
// (unlike verifyExisting's dedup probe) is user-facing retrieval/deletion.
func (e *Engine) readNode(digest []byte, height, rootHeight int) ([]byte, error) {
	cipher, err := e.backend.Get(digest)
	if err != nil {
		return nil, err
	}
	plain, err := e.wrapper.Unwrap(cipher, digest, height, height == rootHeight, -1)
	if err != nil {
		return nil, err
	}
	if plain == nil {
		return nil, &wrapper.IntegrityError{Height: height, IsRoot: height == rootHeight}
	}
	return plain, nil
}

func (e *Engine) readChildren(digest []byte, height, rootHeight int) ([][]byte, error) {
	payload, err := e.readNode(digest, height, rootHeight)
	if err != nil {
		return nil, err
	}
	return splitDigests(payload, e.digestSize), nil
}

func concatDigests(children [][]byte) []byte {
	out := make([]byte, 0, len(children)*32)
	for _, c := range children {
		out = append(out, c...)
	}
	return out
}

func splitDigests(payload []byte, digestSize int) [][]byte {
	n := len(payload) / digestSize
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = payload[i*digestSize : (i+1)*digestSize]
	}
	return out
}
