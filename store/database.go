package store

import (
	"sync"

	"github.com/luxfi/database"
)

// DatabaseStore adapts github.com/luxfi/database.Database — the teacher's
// actual direct KV-store dependency (used throughout its chains/atomic,
// iface, and engine packages) — to the KVStore contract.
type DatabaseStore struct {
	mu    sync.Mutex
	db    database.Database
	count int
}

// NewDatabaseStore wraps an already-open database.Database.
func NewDatabaseStore(db database.Database) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Get implements KVStore.
func (s *DatabaseStore) Get(k []byte) ([]byte, error) {
	v, err := s.db.Get(k)
	if err != nil {
		if err == database.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements KVStore.
func (s *DatabaseStore) Put(k, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existed, err := s.db.Has(k)
	if err != nil {
		return err
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	if err := s.db.Put(k, cp); err != nil {
		return err
	}
	if !existed {
		s.count++
	}
	return nil
}

// Delete implements KVStore.
func (s *DatabaseStore) Delete(k []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existed, err := s.db.Has(k)
	if err != nil {
		return err
	}
	if err := s.db.Delete(k); err != nil {
		return err
	}
	if existed {
		s.count--
	}
	return nil
}

// Contains implements KVStore.
func (s *DatabaseStore) Contains(k []byte) (bool, error) {
	return s.db.Has(k)
}

// Len returns the number of entries currently stored. Test-only helper, not
// part of the KVStore contract; tracked locally since database.Database
// exposes no enumeration method.
func (s *DatabaseStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
