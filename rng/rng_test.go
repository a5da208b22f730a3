package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Int63(), b.Int63())
	}
}

func TestNewZeroSeedUsesDefault(t *testing.T) {
	a := New(0)
	b := New(defaultSeed)
	assert.Equal(t, a.Int63(), b.Int63())
}

func TestDeriveIndependentStreams(t *testing.T) {
	base := New(7)
	s1 := Derive(base, 1)

	base2 := New(7)
	s2 := Derive(base2, 2)

	assert.NotEqual(t, s1.Int63(), s2.Int63())
}

func TestDeriveReproducible(t *testing.T) {
	base1 := New(7)
	d1 := Derive(base1, 3)

	base2 := New(7)
	d2 := Derive(base2, 3)

	for i := 0; i < 5; i++ {
		require.Equal(t, d1.Int63(), d2.Int63())
	}
}

func TestShuffleIntsPreservesElements(t *testing.T) {
	r := New(1)
	a := []int{1, 2, 3, 4, 5, 6, 7}
	orig := append([]int(nil), a...)
	ShuffleInts(a, r)
	assert.ElementsMatch(t, orig, a)
}

func TestShuffleIntsDeterministic(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	b := []int{1, 2, 3, 4, 5}
	ShuffleInts(a, New(99))
	ShuffleInts(b, New(99))
	assert.Equal(t, a, b)
}

func TestChoice(t *testing.T) {
	r := New(1)
	a := []string{"x", "y", "z"}
	v := Choice(a, r)
	assert.Contains(t, a, v)
}
