package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paletteContains(c RGB) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

func TestStore_Initialize_Ranges(t *testing.T) {
	s := NewStore(42)
	s.Initialize(800, 600, 200)

	p := s.Particles()
	require.Len(t, p, 200)

	for i := range p {
		assert.GreaterOrEqual(t, p[i].X, 0.0)
		assert.LessOrEqual(t, p[i].X, 800.0)
		assert.GreaterOrEqual(t, p[i].Y, 0.0)
		assert.LessOrEqual(t, p[i].Y, 600.0)

		assert.GreaterOrEqual(t, p[i].VX, -1.0)
		assert.LessOrEqual(t, p[i].VX, 1.0)
		assert.GreaterOrEqual(t, p[i].VY, -1.0)
		assert.LessOrEqual(t, p[i].VY, 1.0)

		assert.GreaterOrEqual(t, p[i].Radius, MinRadius)
		assert.LessOrEqual(t, p[i].Radius, MaxRadius)

		assert.GreaterOrEqual(t, p[i].Alpha, MinAlpha)
		assert.LessOrEqual(t, p[i].Alpha, MaxAlpha)

		assert.GreaterOrEqual(t, p[i].Age, 0)
		assert.Less(t, p[i].Age, MaxInitAge)
		assert.GreaterOrEqual(t, p[i].Lifespan, MinLifespan)
		assert.Less(t, p[i].Lifespan, MaxLifespan)

		assert.True(t, paletteContains(p[i].Color), "color must come from the fixed palette")
	}
}

func TestStore_Initialize_ReplacesAtomically(t *testing.T) {
	s := NewStore(1)
	s.Initialize(100, 100, 50)
	old := s.Particles()

	s.Initialize(100, 100, 80)

	// The old slice is untouched; readers holding it never see a rebuild.
	assert.Len(t, old, 50)
	assert.Len(t, s.Particles(), 80)
}

func TestStore_Reinitialize_ReusesCount(t *testing.T) {
	s := NewStore(7)
	s.Initialize(800, 600, 123)

	s.Reinitialize(400, 300)
	require.Equal(t, 123, s.Count())
	require.Len(t, s.Particles(), 123)

	for _, p := range s.Particles() {
		assert.LessOrEqual(t, p.X, 400.0)
		assert.LessOrEqual(t, p.Y, 300.0)
	}

	w, h := s.Bounds()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 300.0, h)
}

func TestStore_Reinitialize_DrawsFreshValues(t *testing.T) {
	s := NewStore(99)
	s.Initialize(800, 600, 64)
	first := append([]Particle(nil), s.Particles()...)

	s.Reinitialize(800, 600)
	second := s.Particles()
	require.Len(t, second, 64)

	same := 0
	for i := range second {
		if second[i].X == first[i].X && second[i].Y == first[i].Y {
			same++
		}
	}
	assert.Less(t, same, 64, "reinitialize must draw a fresh random batch")
}

func TestStore_Reinitialize_BeforeInitializeUsesDefaultCount(t *testing.T) {
	s := NewStore(3)
	s.Reinitialize(640, 480)
	assert.Len(t, s.Particles(), DefaultParticleCount)
}
