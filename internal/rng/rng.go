// Package rng provides the seeded pseudo-random generator every transformation stage draws from.
//
// The generator is xoshiro256** over four uint64 words, seeded through SplitMix64 so that small
// or adjacent seeds still start from well-mixed state. Only fixed-width integer arithmetic is used,
// which keeps sequences identical across platforms.
package rng

import (
	"math/bits"
	"time"
)

// Generator is a deterministic pseudo-random source. It is not safe for concurrent use;
// every pipeline run owns its own instance.
type Generator struct {
	s    [4]uint64
	seed int64
}

// New creates a generator for the given seed.
func New(seed int64) *Generator {
	g := &Generator{seed: seed}
	sm := uint64(seed)
	for i := range g.s {
		sm, g.s[i] = splitMix64(sm)
	}
	// xoshiro must not start from the all-zero state
	if g.s[0]|g.s[1]|g.s[2]|g.s[3] == 0 {
		g.s[0] = 0x9e3779b97f4a7c15
	}
	return g
}

// NewUnseeded creates a generator seeded from the wall clock. The drawn seed is available via Seed.
func NewUnseeded() *Generator {
	return New(ClockSeed())
}

// ClockSeed returns a seed derived from the current time.
func ClockSeed() int64 {
	_, mixed := splitMix64(uint64(time.Now().UnixNano()))
	return int64(mixed >> 1)
}

// DeriveSeed returns the seed for the document at index in a batch started from base.
// Batch output depends only on (base, index), never on execution order.
func DeriveSeed(base int64, index int) int64 {
	return base + int64(index)
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Uint64 returns the next 64 random bits.
func (g *Generator) Uint64() uint64 {
	result := bits.RotateLeft64(g.s[1]*5, 7) * 9
	t := g.s[1] << 17

	g.s[2] ^= g.s[0]
	g.s[3] ^= g.s[1]
	g.s[1] ^= g.s[2]
	g.s[0] ^= g.s[3]
	g.s[2] ^= t
	g.s[3] = bits.RotateLeft64(g.s[3], 45)

	return result
}

// Next returns a float64 in [0, 1) built from the top 53 bits.
func (g *Generator) Next() float64 {
	return float64(g.Uint64()>>11) * (1.0 / (1 << 53))
}

// Intn returns an int in [0, n). It returns 0 when n <= 0.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	// Lemire's multiply-shift; the bias for n far below 2^64 is negligible for text editing
	hi, _ := bits.Mul64(g.Uint64(), uint64(n))
	return int(hi)
}

// Chance reports whether a coin flip with probability p succeeds. It always draws exactly one value
// so the call sequence does not depend on p.
func (g *Generator) Chance(p float64) bool {
	return g.Next() < p
}

// Choice returns a random element of items, or the zero value for an empty slice.
func Choice[T any](g *Generator, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[g.Intn(len(items))]
}

// Shuffle returns a shuffled copy of items (Fisher-Yates). The input is not modified.
func Shuffle[T any](g *Generator, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// splitMix64 advances the SplitMix64 state and returns the new state and its mixed output.
func splitMix64(state uint64) (uint64, uint64) {
	state += 0x9e3779b97f4a7c15
	z := state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return state, z ^ (z >> 31)
}
