// Package seed derives a deterministic pseudo-random stream from a
// passphrase. The stream is the only source of randomness shared between
// an encoder and a decoder: given the same passphrase, both sides must draw
// the identical sequence of uniform integers.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// Size is the length in bytes of the derived seed.
const Size = 32

// Derive turns a passphrase into its 32-byte seed via SHA-256. This
// derivation is part of the on-the-wire contract (spec §6) and must never
// change: two deployments that disagree on it cannot interoperate.
func Derive(passphrase string) [Size]byte {
	return sha256.Sum256([]byte(passphrase))
}

// Stream is a restartable, seekable-by-reseeding source of uniform integers.
// It is backed by a ChaCha20 keystream keyed on the derived seed: the
// keystream bytes are consumed four at a time and folded into uint32 draws.
// Stream is not safe for concurrent use; the codec is single-threaded
// end-to-end (spec §5) and never shares one across goroutines.
type Stream struct {
	cipher *chacha20.Cipher
	buf    [4]byte
}

// New constructs a Stream from a passphrase. Construction is pure: two
// Streams built from the same passphrase and driven by the same call
// sequence produce identical outputs.
func New(passphrase string) (*Stream, error) {
	s := Derive(passphrase)
	// chacha20.NewUnauthenticatedCipher accepts a 12- or 24-byte nonce; the
	// 24-byte size used here selects XChaCha20. A fixed all-zero nonce is fine here since the key itself is unique per
	// passphrase and the cipher is never used for confidentiality (spec §1
	// Non-goals: this is a permutation driver, not encryption).
	nonce := make([]byte, chacha20.NonceSizeX)
	c, err := chacha20.NewUnauthenticatedCipher(s[:], nonce)
	if err != nil {
		return nil, fmt.Errorf("seed: constructing keystream: %w", err)
	}
	return &Stream{cipher: c}, nil
}

// next32 draws the next 32-bit word from the keystream.
func (s *Stream) next32() uint32 {
	var zero, out [4]byte
	s.cipher.XORKeyStream(out[:], zero[:])
	return binary.LittleEndian.Uint32(out[:])
}

// Uint returns a uniform integer in [0, n). n must be positive.
func (s *Stream) Uint(n int) int {
	if n <= 0 {
		panic("seed: Uint requires n > 0")
	}
	if n == 1 {
		return 0
	}
	// Rejection sampling over 32-bit words keeps the distribution uniform
	// (a plain modulo would bias small n toward the low end of the range).
	limit := (^uint32(0) / uint32(n)) * uint32(n)
	for {
		v := s.next32()
		if v < limit {
			return int(v % uint32(n))
		}
	}
}
