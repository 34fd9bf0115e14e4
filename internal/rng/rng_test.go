package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Uint64(), b.Uint64(), "sequence diverged at draw %d", i)
	}
}

func TestNew_DifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	same := 0
	for i := 0; i < 100; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	assert.Less(t, same, 2)
}

func TestNew_ZeroSeedIsUsable(t *testing.T) {
	g := New(0)
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		seen[g.Uint64()] = true
	}
	assert.Greater(t, len(seen), 95)
}

func TestNext_Range(t *testing.T) {
	g := New(7)
	for i := 0; i < 10000; i++ {
		v := g.Next()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestNext_SmallSeedsWellDistributed(t *testing.T) {
	// mean of the first draw across consecutive seeds should sit near 0.5
	sum := 0.0
	n := 2000
	for seed := 0; seed < n; seed++ {
		sum += New(int64(seed)).Next()
	}
	mean := sum / float64(n)
	assert.InDelta(t, 0.5, mean, 0.05)
}

func TestIntn(t *testing.T) {
	g := New(99)
	counts := make([]int, 5)
	for i := 0; i < 5000; i++ {
		v := g.Intn(5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
		counts[v]++
	}
	for i, c := range counts {
		assert.Greater(t, c, 800, "bucket %d under-filled", i)
	}

	assert.Equal(t, 0, g.Intn(0))
	assert.Equal(t, 0, g.Intn(-3))
}

func TestChoice(t *testing.T) {
	g := New(3)
	items := []string{"a", "b", "c"}
	for i := 0; i < 50; i++ {
		assert.Contains(t, items, Choice(g, items))
	}
	assert.Equal(t, "", Choice(g, []string{}))
}

func TestShuffle_IsPermutationAndDeterministic(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	first := Shuffle(New(11), items)
	second := Shuffle(New(11), items)

	assert.Equal(t, first, second)
	assert.ElementsMatch(t, items, first)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, items, "input must not be modified")
}

func TestDeriveSeed(t *testing.T) {
	assert.Equal(t, int64(100), DeriveSeed(100, 0))
	assert.Equal(t, int64(103), DeriveSeed(100, 3))
	assert.Equal(t, int64(-1), DeriveSeed(-5, 4))
}

func TestSeed(t *testing.T) {
	assert.Equal(t, int64(1234), New(1234).Seed())
}

func TestChance_AlwaysDrawsOnce(t *testing.T) {
	a := New(5)
	b := New(5)

	a.Chance(0)
	a.Chance(1)
	b.Next()
	b.Next()

	assert.Equal(t, a.Uint64(), b.Uint64())
}
