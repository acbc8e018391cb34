// Package dice provides the randomness abstraction used when a match is
// generated. Every draw goes through a Source so world creation can be made
// reproducible by seeding.
package dice

import (
	"math/rand/v2"
	"sync"
)

// Source is the randomness provider for world generation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// seededSource is a deterministic PCG stream.
//
// Invariant: two sources built from the same seed produce the same sequence.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source for seed.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// Intn returns the next value of the stream in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	mustBePositive(n)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewSeed draws a fresh seed from src, for matches started without one.
func NewSeed(src Source) int64 {
	hi := int64(src.Intn(1 << 30))
	lo := int64(src.Intn(1 << 30))
	return hi<<30 | lo
}
