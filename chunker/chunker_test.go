package chunker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomBytes(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b)
	return b
}

func TestBoundariesAreDeterministic(t *testing.T) {
	c := New([]int64{128, 4096, 131072})
	data := randomBytes(200000, 1)

	b1, err := c.Boundaries(data, WindowSize-1)
	require.NoError(t, err)
	b2, err := c.Boundaries(data, WindowSize-1)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}

func TestBoundariesAreAscendingAndBounded(t *testing.T) {
	c := New([]int64{128, 4096, 131072})
	data := randomBytes(100000, 2)

	bounds, err := c.Boundaries(data, WindowSize-1)
	require.NoError(t, err)
	require.NotEmpty(t, bounds)

	prev := int64(0)
	for _, b := range bounds {
		require.Greater(t, b.Position, prev)
		require.LessOrEqual(t, b.Position, int64(len(data)))
		require.GreaterOrEqual(t, b.Level, 0)
		require.LessOrEqual(t, b.Level, 2)
		prev = b.Position
	}
}

func TestSharedPrefixSharesBoundaries(t *testing.T) {
	c := New([]int64{128, 4096})
	prefix := randomBytes(50000, 3)
	a := append(append([]byte(nil), prefix...), randomBytes(1000, 4)...)
	b := append(append([]byte(nil), prefix...), randomBytes(1000, 5)...)

	boundsA, err := c.Boundaries(a, WindowSize-1)
	require.NoError(t, err)
	boundsB, err := c.Boundaries(b, WindowSize-1)
	require.NoError(t, err)

	// The two inputs must agree on every boundary that falls strictly
	// before the point where they diverge.
	var sharedA, sharedB []Boundary
	for _, bd := range boundsA {
		if bd.Position <= int64(len(prefix))-WindowSize {
			sharedA = append(sharedA, bd)
		}
	}
	for _, bd := range boundsB {
		if bd.Position <= int64(len(prefix))-WindowSize {
			sharedB = append(sharedB, bd)
		}
	}
	require.Equal(t, sharedA, sharedB)
}

func TestSmallInputBoundariesStayWithinData(t *testing.T) {
	c := New([]int64{4096, 131072})
	data := randomBytes(16, 6)

	bounds, err := c.Boundaries(data, WindowSize-1)
	require.NoError(t, err)
	for _, b := range bounds {
		require.LessOrEqual(t, b.Position, int64(len(data)))
	}
}
