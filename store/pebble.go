package store

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Pebble is a KVStore backed directly by a cockroachdb/pebble database. In
// the teacher repo pebble is only ever pulled in transitively (underneath
// github.com/luxfi/database); it is promoted to a direct dependency here so
// cmd/seccsctl has a real persistent backend without going through the
// database.Database indirection DatabaseStore wraps.
type Pebble struct {
	db *pebble.DB
}

// PebbleOption configures a Pebble store at construction.
type PebbleOption func(*pebble.Options)

// WithCache sets the pebble block cache size in bytes.
func WithCache(bytes int64) PebbleOption {
	return func(o *pebble.Options) {
		o.Cache = pebble.NewCache(bytes)
	}
}

// NewPebble opens (creating if necessary) a pebble database at dir.
func NewPebble(dir string, opts ...PebbleOption) (*Pebble, error) {
	popts := &pebble.Options{}
	for _, opt := range opts {
		opt(popts)
	}
	db, err := pebble.Open(dir, popts)
	if err != nil {
		return nil, fmt.Errorf("store: open pebble at %q: %w", dir, err)
	}
	return &Pebble{db: db}, nil
}

// Get implements KVStore.
func (p *Pebble) Get(k []byte) ([]byte, error) {
	v, closer, err := p.db.Get(k)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: pebble get: %w", err)
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements KVStore.
func (p *Pebble) Put(k, v []byte) error {
	if err := p.db.Set(k, v, pebble.Sync); err != nil {
		return fmt.Errorf("store: pebble set: %w", err)
	}
	return nil
}

// Delete implements KVStore.
func (p *Pebble) Delete(k []byte) error {
	if err := p.db.Delete(k, pebble.Sync); err != nil {
		return fmt.Errorf("store: pebble delete: %w", err)
	}
	return nil
}

// Contains implements KVStore.
func (p *Pebble) Contains(k []byte) (bool, error) {
	_, closer, err := p.db.Get(k)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("store: pebble get: %w", err)
	}
	closer.Close()
	return true, nil
}

// Close releases the underlying pebble database.
func (p *Pebble) Close() error {
	return p.db.Close()
}
