package wrapper

import (
	"bytes"
	"crypto/sha256"

	"github.com/zeebo/blake3"
)

// SHA256 is the unkeyed plain-hash wrapper. It provides integrity (detects
// accidental corruption) but no confidentiality and no authenticity: anyone
// who can write to the backend can forge a node whose digest matches its
// content. It binds height into the digest but never is_root (table's
// "is_root in MAC: no").
type SHA256 struct{}

// NewSHA256 returns a SHA-256 plain-hash wrapper.
func NewSHA256() *SHA256 { return &SHA256{} }

// DigestSize implements CryptoWrapper.
func (*SHA256) DigestSize() int { return sha256.Size }

// Wrap implements CryptoWrapper.
func (*SHA256) Wrap(plain []byte, height int, isRoot bool) (cipher, digest []byte, err error) {
	sum := sha256.Sum256(concat(bindHeader(height, isRoot, false), plain))
	cipher = append([]byte(nil), plain...)
	return cipher, sum[:], nil
}

// Unwrap implements CryptoWrapper. A digest mismatch returns (nil, nil):
// the unkeyed integrity signal the engine's dedup path treats as "not a
// match" rather than a thrown error.
func (*SHA256) Unwrap(cipher, digest []byte, height int, isRoot bool, length int) ([]byte, error) {
	sum := sha256.Sum256(concat(bindHeader(height, isRoot, false), cipher))
	if !bytes.Equal(sum[:], digest) {
		return nil, nil
	}
	return append([]byte{}, cipher...), nil
}

// BLAKE3 is a bonus unkeyed plain-hash wrapper, structurally identical to
// SHA256 but built on a faster tree-friendly hash function. Like SHA256 it
// offers integrity only, and signals tampering with (nil, nil).
type BLAKE3 struct{}

// NewBLAKE3 returns a BLAKE3 plain-hash wrapper.
func NewBLAKE3() *BLAKE3 { return &BLAKE3{} }

// DigestSize implements CryptoWrapper.
func (*BLAKE3) DigestSize() int { return 32 }

// Wrap implements CryptoWrapper.
func (*BLAKE3) Wrap(plain []byte, height int, isRoot bool) (cipher, digest []byte, err error) {
	h := blake3.New()
	h.Write(bindHeader(height, isRoot, false))
	h.Write(plain)
	cipher = append([]byte(nil), plain...)
	return cipher, h.Sum(nil), nil
}

// Unwrap implements CryptoWrapper.
func (*BLAKE3) Unwrap(cipher, digest []byte, height int, isRoot bool, length int) ([]byte, error) {
	h := blake3.New()
	h.Write(bindHeader(height, isRoot, false))
	h.Write(cipher)
	if !bytes.Equal(h.Sum(nil), digest) {
		return nil, nil
	}
	return append([]byte{}, cipher...), nil
}
