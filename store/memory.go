package store

import "github.com/luxfi/database/memdb"

// NewMemory returns an in-process KVStore backed by
// github.com/luxfi/database/memdb, the teacher's own in-memory
// database.Database implementation, wrapped by DatabaseStore. Intended for
// tests and small deployments; it holds no data on disk.
func NewMemory() *DatabaseStore {
	return NewDatabaseStore(memdb.New())
}
