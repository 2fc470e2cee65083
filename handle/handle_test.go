package handle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	digest := bytes.Repeat([]byte{0xAB}, 32)
	h := Encode(digest, 1234)
	require.Len(t, h, 40)

	gotDigest, gotLen, err := Decode(h, 32)
	require.NoError(t, err)
	require.Equal(t, digest, gotDigest)
	require.Equal(t, uint64(1234), gotLen)
}

func TestEncodeEmptyContent(t *testing.T) {
	digest := bytes.Repeat([]byte{0x00}, 32)
	h := Encode(digest, 0)
	require.Len(t, h, 40)
	require.True(t, bytes.Equal(h[32:], make([]byte, 8)))
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	_, _, err := Decode(make([]byte, 10), 32)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestSize(t *testing.T) {
	require.Equal(t, 40, Size(32))
}
