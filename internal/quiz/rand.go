package quiz

import "math/rand/v2"

// Rand is the randomness the engine needs. *rand.Rand from math/rand/v2
// satisfies it, which lets tests pass a seeded source.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }
