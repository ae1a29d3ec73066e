// Package random provides the seedable dice and shuffling source used by a
// game. Two sources created with the same seed produce the same sequence.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Generator is the randomness a game consumes.
type Generator interface {
	// RollDice returns a value in 1..sides.
	RollDice(sides int) int
	// GenerateShufflingIndexes returns a permutation of 0..count-1.
	GenerateShufflingIndexes(count int) []int
}

// Source is a deterministic Generator backed by math/rand. It is not safe
// for concurrent use; each game owns its own Source.
type Source struct {
	seed int64
	rng  *rand.Rand
}

// NewSource creates a source from a seed.
func NewSource(seed int64) *Source {
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// RollDice returns a value in 1..sides. It panics when sides is not positive.
func (s *Source) RollDice(sides int) int {
	if sides <= 0 {
		panic(fmt.Sprintf("random: invalid die with %d sides", sides))
	}
	return s.rng.Intn(sides) + 1
}

// GenerateShufflingIndexes returns a Fisher-Yates permutation of 0..count-1.
func (s *Source) GenerateShufflingIndexes(count int) []int {
	if count <= 0 {
		return nil
	}
	indexes := make([]int, count)
	for i := range indexes {
		indexes[i] = i
	}
	for i := count - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		indexes[i], indexes[j] = indexes[j], indexes[i]
	}
	return indexes
}

// Read fills p with pseudo-random bytes from the source, so a Source can
// feed deterministic identifier generation.
func (s *Source) Read(p []byte) (int, error) {
	return s.rng.Read(p)
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
