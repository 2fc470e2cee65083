// Package config holds constructor-time configuration for the chunk-tree
// engine: the target chunk size and any overrides to the level schedule.
// There are no environment variables and no config files — every knob is
// set through New or Builder at construction time.
package config

import "errors"

// ErrUnsupportedChunkSize is returned by New when chunkSize is smaller than
// twice the wrapper's digest size and no HeightToChunkSizeFn override was
// supplied. Below that threshold the expected fan-out per tree level drops
// under 2 and the O(log n) height bound no longer holds.
var ErrUnsupportedChunkSize = errors.New("config: chunk size too small for digest size")

// LengthToHeightFunc maps a content length to a chunk-tree height.
type LengthToHeightFunc func(length int64) int

// HeightToChunkSizeFunc maps a chunk-tree level to its target chunk size.
type HeightToChunkSizeFunc func(level int) int64

// Config is the engine's constructor-time configuration.
type Config struct {
	// ChunkSize is S, the target average chunk size in bytes.
	ChunkSize int64

	// LengthToHeightFn overrides the default length-to-height function.
	// Nil selects the default schedule.
	LengthToHeightFn LengthToHeightFunc

	// HeightToChunkSizeFn overrides the default height-to-chunksize
	// function. Supplying this waives the ChunkSize >= 2*digestSize
	// precondition in New.
	HeightToChunkSizeFn HeightToChunkSizeFunc
}

// Option configures a Config at construction.
type Option func(*Config)

// WithLengthToHeightFunc overrides the length-to-height schedule function.
func WithLengthToHeightFunc(fn LengthToHeightFunc) Option {
	return func(c *Config) { c.LengthToHeightFn = fn }
}

// WithHeightToChunkSizeFunc overrides the height-to-chunksize schedule
// function, waiving the ChunkSize >= 2*digestSize precondition.
func WithHeightToChunkSizeFunc(fn HeightToChunkSizeFunc) Option {
	return func(c *Config) { c.HeightToChunkSizeFn = fn }
}

// New builds a Config for the given target chunk size and the wrapper's
// digest size, applying any overrides in opts.
func New(chunkSize int64, digestSize int, opts ...Option) (*Config, error) {
	cfg := &Config{ChunkSize: chunkSize}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.HeightToChunkSizeFn == nil && chunkSize < 2*int64(digestSize) {
		return nil, ErrUnsupportedChunkSize
	}
	return cfg, nil
}
