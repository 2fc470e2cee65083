// Package handle codes the content reference returned by put_content: a
// fixed-size token of digest bytes followed by a big-endian length, opaque
// to callers beyond encode/decode.
package handle

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformed is returned by Decode when the input is not exactly
// digestSize+8 bytes.
var ErrMalformed = errors.New("handle: malformed content reference")

// lengthSize is the width of the big-endian length suffix.
const lengthSize = 8

// Encode packs a root digest and content length into a handle: digest bytes
// followed by the length as an 8-byte big-endian unsigned integer.
func Encode(digest []byte, length uint64) []byte {
	h := make([]byte, len(digest)+lengthSize)
	copy(h, digest)
	binary.BigEndian.PutUint64(h[len(digest):], length)
	return h
}

// Decode unpacks a handle of the given digest size into its root digest and
// content length. It rejects any input whose size is not digestSize+8.
func Decode(h []byte, digestSize int) (digest []byte, length uint64, err error) {
	want := digestSize + lengthSize
	if len(h) != want {
		return nil, 0, fmt.Errorf("%w: want %d bytes, got %d", ErrMalformed, want, len(h))
	}
	digest = make([]byte, digestSize)
	copy(digest, h[:digestSize])
	length = binary.BigEndian.Uint64(h[digestSize:])
	return digest, length, nil
}

// Size returns the total handle size for a given digest size.
func Size(digestSize int) int {
	return digestSize + lengthSize
}
