package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKVStoreContract(t *testing.T, s KVStore) {
	t.Helper()

	ok, err := s.Contains([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put([]byte("k"), []byte("v1")))
	ok, err = s.Contains([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)

	v, err := s.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)

	require.NoError(t, s.Put([]byte("k"), []byte("v2")))
	v, err = s.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), v)

	require.NoError(t, s.Delete([]byte("k")))
	ok, err = s.Contains([]byte("k"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Delete([]byte("never-existed")))
}

func TestMemorySatisfiesContract(t *testing.T) {
	testKVStoreContract(t, NewMemory())
}

func TestMemoryIsolatesStoredBytes(t *testing.T) {
	m := NewMemory()
	v := []byte("abc")
	require.NoError(t, m.Put([]byte("k"), v))
	v[0] = 'z'

	got, err := m.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
}

func TestMemoryLen(t *testing.T) {
	m := NewMemory()
	require.Equal(t, 0, m.Len())
	require.NoError(t, m.Put([]byte("a"), []byte("1")))
	require.NoError(t, m.Put([]byte("b"), []byte("2")))
	require.Equal(t, 2, m.Len())
	require.NoError(t, m.Delete([]byte("a")))
	require.Equal(t, 1, m.Len())
}

func TestPebbleSatisfiesContract(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPebble(dir)
	require.NoError(t, err)
	defer p.Close()

	testKVStoreContract(t, p)
}

func TestPebbleErrNotFoundIsUnwrappable(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPebble(dir)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Get([]byte("nope"))
	require.True(t, errors.Is(err, ErrNotFound))
}
