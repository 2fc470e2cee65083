package chunktree

import (
	"bytes"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/seccs/config"
	"github.com/luxfi/seccs/handle"
	"github.com/luxfi/seccs/store"
	"github.com/luxfi/seccs/wrapper"
)

func newTestEngine(t *testing.T, chunkSize int64) (*Engine, *store.Memory) {
	t.Helper()
	cw := wrapper.NewHMACSHA256(bytes.Repeat([]byte{0x42}, 32))
	cfg, err := config.New(chunkSize, cw.DigestSize())
	require.NoError(t, err)
	backend := store.NewMemory()
	e, err := New(cfg, backend, cw)
	require.NoError(t, err)
	return e, backend
}

func randomBytes(n int, seed int64) []byte {
	r := mrand.New(mrand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b)
	return b
}

func TestPutGetEmptyContent(t *testing.T) {
	e, backend := newTestEngine(t, 4096)

	hdl, err := e.PutContent(nil, false)
	require.NoError(t, err)
	require.Equal(t, handle.Size(32), len(hdl))
	// One (empty) leaf node plus its reference counter, which the default
	// counter overlays onto the same backend.
	require.Equal(t, 2, backend.Len())

	got, err := e.GetContent(hdl)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPutGetSmallContentSingleLeaf(t *testing.T) {
	e, _ := newTestEngine(t, 4096)

	content := []byte("hello, chunk tree")
	hdl, err := e.PutContent(content, false)
	require.NoError(t, err)

	got, err := e.GetContent(hdl)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestPutGetLargeContentRoundTrips(t *testing.T) {
	e, _ := newTestEngine(t, 256)

	content := randomBytes(256*64, 1)
	hdl, err := e.PutContent(content, false)
	require.NoError(t, err)

	got, err := e.GetContent(hdl)
	require.NoError(t, err)
	require.True(t, bytes.Equal(content, got))
}

func TestPutContentIsDeterministic(t *testing.T) {
	e, _ := newTestEngine(t, 256)

	content := randomBytes(256*32, 2)
	hdl1, err := e.PutContent(content, false)
	require.NoError(t, err)
	hdl2, err := e.PutContent(content, false)
	require.NoError(t, err)
	require.Equal(t, hdl1, hdl2)
}

func TestPutContentAndCheckIfNewReportsDedup(t *testing.T) {
	e, _ := newTestEngine(t, 256)

	content := randomBytes(256*32, 3)
	_, isNew1, err := e.PutContentAndCheckIfNew(content, false)
	require.NoError(t, err)
	require.True(t, isNew1)

	_, isNew2, err := e.PutContentAndCheckIfNew(content, false)
	require.NoError(t, err)
	require.False(t, isNew2)
}

func TestDeleteContentRemovesRoot(t *testing.T) {
	e, backend := newTestEngine(t, 4096)

	content := []byte("content to be deleted")
	hdl, err := e.PutContent(content, false)
	require.NoError(t, err)

	require.NoError(t, e.DeleteContent(hdl, false))

	digest, _, err := handle.Decode(hdl, 32)
	require.NoError(t, err)
	exists, err := backend.Contains(digest)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = e.GetContent(hdl)
	require.Error(t, err)
}

func TestDeleteOfDuplicatePreservesOther(t *testing.T) {
	e, _ := newTestEngine(t, 4096)

	content := []byte("shared content")
	hdl1, err := e.PutContent(content, false)
	require.NoError(t, err)
	hdl2, err := e.PutContent(content, false)
	require.NoError(t, err)
	require.Equal(t, hdl1, hdl2)

	require.NoError(t, e.DeleteContent(hdl1, false))

	got, err := e.GetContent(hdl2)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestCrossContentChildrenSurviveOneParentDeletion(t *testing.T) {
	e, backend := newTestEngine(t, 64)

	shared := randomBytes(64*8, 4)
	a := append(append([]byte{}, shared...), randomBytes(64*8, 5)...)
	b := append(append([]byte{}, shared...), randomBytes(64*8, 6)...)

	hdlA, err := e.PutContent(a, false)
	require.NoError(t, err)
	hdlB, err := e.PutContent(b, false)
	require.NoError(t, err)

	sizeBefore := backend.Len()
	require.NoError(t, e.DeleteContent(hdlA, false))
	require.Less(t, backend.Len(), sizeBefore)

	got, err := e.GetContent(hdlB)
	require.NoError(t, err)
	require.Equal(t, b, got)
}

func TestTamperedNodeSurfacesAuthenticityError(t *testing.T) {
	e, backend := newTestEngine(t, 4096)

	content := []byte("do not tamper with this")
	hdl, err := e.PutContent(content, false)
	require.NoError(t, err)

	digest, _, err := handle.Decode(hdl, 32)
	require.NoError(t, err)
	require.NoError(t, backend.Put(digest, []byte("corrupted bytes of the wrong length")))

	_, err = e.GetContent(hdl)
	require.Error(t, err)
	var authErr *wrapper.AuthenticityError
	require.ErrorAs(t, err, &authErr)
}

func TestDistinguishedRootWrapperRoundTrips(t *testing.T) {
	key := bytes.Repeat([]byte{0x7}, 32)
	cw := wrapper.NewHMACSHA256DR(key)
	cfg, err := config.New(64, cw.DigestSize())
	require.NoError(t, err)
	backend := store.NewMemory()
	e, err := New(cfg, backend, cw)
	require.NoError(t, err)

	content := randomBytes(64*16, 7)
	hdl, err := e.PutContent(content, false)
	require.NoError(t, err)

	got, err := e.GetContent(hdl)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestIgnoreRootRCSkipsReferenceCounting(t *testing.T) {
	e, backend := newTestEngine(t, 4096)

	content := []byte("untracked content")
	hdl, err := e.PutContent(content, true)
	require.NoError(t, err)

	digest, _, err := handle.Decode(hdl, 32)
	require.NoError(t, err)
	exists, err := backend.Contains(append(append([]byte{}, digest...), 'r'))
	require.NoError(t, err)
	require.False(t, exists)
}
