// Package refcount implements the reference-counter capability the chunk-tree
// engine uses to know when a node's last in-edge has been removed.
package refcount

import "github.com/luxfi/seccs/store"

// Counter tracks a non-negative integer count per key. A count of zero is
// equivalent to the key being absent.
type Counter interface {
	// Inc increments the counter for k and returns the new count. A counter
	// that does not yet exist is created with value 1.
	Inc(k []byte) (uint64, error)
	// Dec decrements the counter for k and returns the new count. Decrementing
	// a counter already at 1 deletes it and returns 0. Decrementing an absent
	// counter is caller error and is undefined behavior (the default
	// implementation returns an error rather than silently underflowing).
	Dec(k []byte) (uint64, error)
}

// NoReferenceCounter is a non-counting Counter that always reports 1 for any
// key. It disables deletion-safety and must only be used when the engine's
// delete operation is never invoked.
type NoReferenceCounter struct{}

// Inc always returns 1.
func (NoReferenceCounter) Inc([]byte) (uint64, error) { return 1, nil }

// Dec always returns 1.
func (NoReferenceCounter) Dec([]byte) (uint64, error) { return 1, nil }

// KeySuffixCounter stores each key's counter under k||suffix in a backing
// store, so the counter keyspace can share a backend with content keys of a
// different fixed width (the engine's default suffix is "r", which makes
// counter keys one byte longer than the R-byte content keys they track).
type KeySuffixCounter struct {
	backend store.KVStore
	suffix  []byte
}

// NewKeySuffixCounter builds a Counter that stores counts in backend under
// k||suffix, encoded as an 8-byte big-endian unsigned integer.
func NewKeySuffixCounter(backend store.KVStore, suffix string) *KeySuffixCounter {
	return &KeySuffixCounter{backend: backend, suffix: []byte(suffix)}
}

func (c *KeySuffixCounter) suffixed(k []byte) []byte {
	sk := make([]byte, 0, len(k)+len(c.suffix))
	sk = append(sk, k...)
	sk = append(sk, c.suffix...)
	return sk
}

// Inc increments the counter for k, creating it at 1 if absent.
func (c *KeySuffixCounter) Inc(k []byte) (uint64, error) {
	sk := c.suffixed(k)
	cur, err := c.read(sk)
	if err != nil {
		return 0, err
	}
	next := cur + 1
	if err := c.write(sk, next); err != nil {
		return 0, err
	}
	return next, nil
}

// Dec decrements the counter for k, deleting it once it reaches zero.
// Decrementing an absent counter returns an error: the engine's contract
// requires callers never do this (spec §7/§9).
func (c *KeySuffixCounter) Dec(k []byte) (uint64, error) {
	sk := c.suffixed(k)
	cur, err := c.read(sk)
	if err != nil {
		return 0, err
	}
	if cur == 0 {
		return 0, &UnderflowError{Key: append([]byte(nil), k...)}
	}
	next := cur - 1
	if next == 0 {
		if err := c.backend.Delete(sk); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err := c.write(sk, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (c *KeySuffixCounter) read(sk []byte) (uint64, error) {
	ok, err := c.backend.Contains(sk)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	v, err := c.backend.Get(sk)
	if err != nil {
		return 0, err
	}
	return decodeCount(v), nil
}

func (c *KeySuffixCounter) write(sk []byte, n uint64) error {
	return c.backend.Put(sk, encodeCount(n))
}

func encodeCount(n uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}

func decodeCount(b []byte) uint64 {
	var n uint64
	for _, x := range b {
		n = n<<8 | uint64(x)
	}
	return n
}

// UnderflowError reports a Dec call against a counter that was already
// absent. This is always a caller bug (double delete of the same handle),
// documented but not guarded against anywhere else in the engine.
type UnderflowError struct {
	Key []byte
}

func (e *UnderflowError) Error() string {
	return "refcount: decrement of absent counter (double delete?)"
}
