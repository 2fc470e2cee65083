// Package store defines the key-value backend contract the chunk-tree engine
// is built on, mirroring the Has/Get/Put/Delete split the teacher's actual
// KV-store dependency, github.com/luxfi/database, exposes on its Database
// interface, renamed to this spec's vocabulary. DatabaseStore adapts that
// dependency directly; Pebble offers a second, lower-level backend for
// callers that want to talk to cockroachdb/pebble without going through it.
package store

import "errors"

// ErrNotFound is returned by Get when the requested key is absent.
var ErrNotFound = errors.New("store: key not found")

// KVStore is the minimal backend contract the engine requires: point get,
// put, delete and containment check over byte-sequence keys and values. All
// four operations are synchronous; the engine assumes single-writer access
// and performs no internal locking.
type KVStore interface {
	// Get returns the value stored under k, or ErrNotFound if absent.
	Get(k []byte) ([]byte, error)
	// Put stores v under k, overwriting any existing value.
	Put(k, v []byte) error
	// Delete removes k. Deleting an absent key is not an error.
	Delete(k []byte) error
	// Contains reports whether k is present.
	Contains(k []byte) (bool, error)
}

// RCStore is the reference-counter backend contract. It is identical to
// KVStore: the reference counter may alias the content backend because
// counter keys carry a length-changing suffix disjoint from R-byte content
// keys (spec §4.5, §6).
type RCStore = KVStore
