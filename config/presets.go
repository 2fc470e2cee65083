package config

// Named target chunk sizes, in bytes, for common deployment shapes.
const (
	// SmallChunks favors deduplication granularity over per-node overhead;
	// suited to highly redundant, frequently-edited contents.
	SmallChunks int64 = 4 * 1024

	// DefaultChunks balances dedup granularity against tree size for
	// general-purpose content.
	DefaultChunks int64 = 64 * 1024

	// LargeChunks favors fewer, larger backend entries over fine-grained
	// deduplication; suited to large, rarely-overlapping contents.
	LargeChunks int64 = 1024 * 1024
)
