package chunktree

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/seccs/chunktree/storemock"
	"github.com/luxfi/seccs/config"
	"github.com/luxfi/seccs/handle"
	"github.com/luxfi/seccs/store"
	"github.com/luxfi/seccs/wrapper"
)

// errBackendGone simulates an underlying disk failure surfacing through the
// KVStore contract.
var errBackendGone = errors.New("storemock: backend unreachable")

// TestDeleteContentPropagatesBackendFailure fails the first backend Delete,
// which is the removal of the root's reference counter when DeleteContent
// decrements it to zero, and checks that the engine surfaces the failure
// rather than swallowing it and reporting success.
func TestDeleteContentPropagatesBackendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mem := store.NewMemory()
	mock := storemock.NewMockKVStore(ctrl)

	mock.EXPECT().Get(gomock.Any()).DoAndReturn(mem.Get).AnyTimes()
	mock.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(mem.Put).AnyTimes()
	mock.EXPECT().Contains(gomock.Any()).DoAndReturn(mem.Contains).AnyTimes()

	var failOnce bool
	mock.EXPECT().Delete(gomock.Any()).DoAndReturn(func(k []byte) error {
		if !failOnce {
			failOnce = true
			return errBackendGone
		}
		return mem.Delete(k)
	}).AnyTimes()

	cw := wrapper.NewHMACSHA256(bytes.Repeat([]byte{0x1}, 32))
	cfg, err := config.New(64, cw.DigestSize())
	require.NoError(t, err)
	e, err := New(cfg, mock, cw)
	require.NoError(t, err)

	content := make([]byte, 64*8)
	for i := range content {
		content[i] = byte(i)
	}
	hdl, err := e.PutContent(content, false)
	require.NoError(t, err)

	err = e.DeleteContent(hdl, false)
	require.ErrorIs(t, err, errBackendGone)
}

// TestGetContentSurfacesAuthenticityErrorOnCorruptRoot verifies that a
// corrupted root node is reported to the caller as an AuthenticityError (not
// silently treated as missing content), exercising the same MockKVStore
// machinery with a tampered Get response instead of a Delete failure.
func TestGetContentSurfacesAuthenticityErrorOnCorruptRoot(t *testing.T) {
	ctrl := gomock.NewController(t)
	mem := store.NewMemory()
	mock := storemock.NewMockKVStore(ctrl)

	mock.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(mem.Put).AnyTimes()
	mock.EXPECT().Contains(gomock.Any()).DoAndReturn(mem.Contains).AnyTimes()
	mock.EXPECT().Delete(gomock.Any()).DoAndReturn(mem.Delete).AnyTimes()

	var digest []byte
	mock.EXPECT().Get(gomock.Any()).DoAndReturn(func(k []byte) ([]byte, error) {
		v, err := mem.Get(k)
		if err != nil {
			return nil, err
		}
		if digest != nil && bytes.Equal(k, digest) {
			corrupted := append([]byte(nil), v...)
			corrupted[0] ^= 0xFF
			return corrupted, nil
		}
		return v, nil
	}).AnyTimes()

	cw := wrapper.NewHMACSHA256(bytes.Repeat([]byte{0x2}, 32))
	cfg, err := config.New(64, cw.DigestSize())
	require.NoError(t, err)
	e, err := New(cfg, mock, cw)
	require.NoError(t, err)

	content := make([]byte, 64*8)
	for i := range content {
		content[i] = byte(i + 1)
	}
	hdl, err := e.PutContent(content, false)
	require.NoError(t, err)

	root, _, err := handle.Decode(hdl, cw.DigestSize())
	require.NoError(t, err)
	digest = root

	_, err = e.GetContent(hdl)
	require.Error(t, err)
	var authErr *wrapper.AuthenticityError
	require.ErrorAs(t, err, &authErr)
}
