package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVectorClass(t *testing.T) {
	zeroVector := Vec3{0, 0, 0}
	oneVector := Vec3{1, 1, 1}

	require.True(t, zeroVector.Equal(Vec3{0, 0, 0}))
	require.True(t, oneVector.EqualWithEpsilon(Vec3{0.9, 1.1, 1}, 0.11))
	require.True(t, oneVector.Equal(zeroVector.Add(oneVector)))
	require.True(t, oneVector.Equal(oneVector.Sub(zeroVector)))
	require.True(t, zeroVector.Equal(oneVector.Mul(0)))

	l1Vector := Vec3{1, 0, 0}
	require.Equal(t, float64(1), l1Vector.Length())
}

func TestDistanceSquared(t *testing.T) {
	a := NewVec3(0, 0, 0)
	b := NewVec3(1, 2, 2)

	require.Equal(t, float64(9), a.DistanceSquared(b))
	require.Equal(t, a.DistanceSquared(b), b.DistanceSquared(a))
}

func TestDistanceSquared2D(t *testing.T) {
	a := NewVec3(0, 0, 0)
	b := NewVec3(3, 4, 100)

	// the z component is ignored on the 2D path
	require.Equal(t, float64(25), a.DistanceSquared2D(b))
	require.Equal(t, float64(10025), a.DistanceSquared(b))
}
