// Package rng provides the seeded random stream behind row sampling and
// distribution draws.
//
// A Stream is a ChaCha8 generator keyed from a single 64-bit seed, so the
// same seed yields the same sequence on every platform and Go release that
// keeps the ChaCha8 algorithm stable.
package rng

import (
	"encoding/binary"
	"math/rand/v2"
)

// Stream is a deterministic random source. It satisfies both the
// math/rand/v2 Source interface and the older Uint64+Seed form that gonum
// samplers accept. A Stream is not safe for concurrent use.
type Stream struct {
	chacha *rand.ChaCha8
	rand   *rand.Rand
}

// New returns a stream keyed by seed.
func New(seed uint64) *Stream {
	chacha := rand.NewChaCha8(expandSeed(seed))
	return &Stream{chacha: chacha, rand: rand.New(chacha)}
}

// Uint64 returns the next 64 random bits.
func (s *Stream) Uint64() uint64 {
	return s.chacha.Uint64()
}

// Seed re-keys the stream as if it had been created by New(seed).
func (s *Stream) Seed(seed uint64) {
	s.chacha.Seed(expandSeed(seed))
}

// Float64 returns a uniform value in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rand.Float64()
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
func (s *Stream) IntN(n int) int {
	return s.rand.IntN(n)
}

// Random returns a seed drawn from the runtime's global generator, used when
// a caller asks for sampling without fixing a seed.
func Random() uint64 {
	return rand.Uint64()
}

// expandSeed stretches a 64-bit seed into a 32-byte ChaCha8 key with
// SplitMix64, so nearby seeds produce unrelated keys.
func expandSeed(seed uint64) [32]byte {
	var key [32]byte
	state := seed
	for i := 0; i < 4; i++ {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		binary.LittleEndian.PutUint64(key[i*8:], z)
	}
	return key
}
