package field

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Turbulence flow-field tuning. The noise is sampled coarsely in space and
// drifts slowly in time so the field reads as a breeze, not static.
const (
	turbSpatialScale = 0.004
	turbTimeScale    = 0.01
)

// Integrator advances the particle set one tick at a time. It is pure state
// in, state out: the pointer snapshot is read-only and the particle slice is
// mutated in place.
type Integrator struct {
	params Params
	noise  *perlin.Perlin
	tick   uint64

	scratch []int32 // grid query buffer, reused across ticks
}

func NewIntegrator(params Params, seed int64) *Integrator {
	it := &Integrator{params: params}
	if params.Turbulence > 0 {
		it.noise = perlin.NewPerlin(2, 2, 3, seed)
	}
	return it
}

func (it *Integrator) Params() Params { return it.params }

// Step runs one tick over all particles. Per-particle order is fixed:
// pointer force, separation, damping, gravity, turbulence, position,
// boundary bounce, lifecycle. Particles are processed sequentially, so later
// particles see earlier particles' already-updated positions within the tick.
func (it *Integrator) Step(p []Particle, ptr *PointerState, width, height float64) {
	it.tick++

	var g *Grid
	if len(p) > GridThreshold {
		g = BuildGrid(p, width, height, SeparationRadius)
	}

	rr := NewRand(splitmix64(it.tick))
	for i := range p {
		pt := &p[i]

		if ptr != nil {
			dvx, dvy := PointerImpulse(pt.X, pt.Y, *ptr, it.params)
			pt.VX += dvx
			pt.VY += dvy
		}

		it.applySeparation(p, i, g)

		pt.VX *= Damping
		pt.VY *= Damping
		pt.VY += Gravity

		if it.noise != nil {
			theta := 2 * math.Pi * it.noise.Noise3D(
				pt.X*turbSpatialScale,
				pt.Y*turbSpatialScale,
				float64(it.tick)*turbTimeScale,
			)
			pt.VX += math.Cos(theta) * it.params.Turbulence
			pt.VY += math.Sin(theta) * it.params.Turbulence
		}

		pt.X += pt.VX
		pt.Y += pt.VY

		// Soft bounce: clamp and invert-and-damp the violated axis.
		if pt.X < 0 {
			pt.X = 0
			pt.VX *= BounceDamp
		} else if pt.X > width {
			pt.X = width
			pt.VX *= BounceDamp
		}
		if pt.Y < 0 {
			pt.Y = 0
			pt.VY *= BounceDamp
		} else if pt.Y > height {
			pt.Y = height
			pt.VY *= BounceDamp
		}

		// Cosmetic respawn-in-place: no physics reset, just a fresh alpha.
		pt.Age++
		if pt.Age > pt.Lifespan {
			pt.Age = 0
			pt.Alpha = rr.RangeF(MinAlpha, MaxAlpha)
		}
	}
}

// PointerImpulse returns the velocity delta the pointer exerts on a particle
// at (x, y). Linear falloff: full strength at the pointer, zero at the radius
// edge. A particle exactly coincident with the pointer gets no impulse: the
// angle is undefined at d == 0, so that tick is deliberately a no-op.
func PointerImpulse(x, y float64, ptr PointerState, params Params) (dvx, dvy float64) {
	dx := x - ptr.X
	dy := y - ptr.Y
	d := math.Hypot(dx, dy)
	if d <= 0 || d >= params.InteractionRadius {
		return 0, 0
	}
	force := (params.InteractionRadius - d) / params.InteractionRadius
	angle := math.Atan2(dy, dx)
	dir := -1.0 // closed hand: pull toward the pointer
	if ptr.Open {
		dir = 1.0 // open hand: push away
	}
	mag := force * params.InteractionStrength * dir
	return math.Cos(angle) * mag, math.Sin(angle) * mag
}

// applySeparation pushes particle i away from every neighbor closer than
// SeparationRadius. The grid, when present, only prunes candidates.
func (it *Integrator) applySeparation(p []Particle, i int, g *Grid) {
	pt := &p[i]
	if g == nil {
		for j := range p {
			if j == i {
				continue
			}
			separate(pt, &p[j])
		}
		return
	}
	it.scratch = g.Neighbors(pt.X, pt.Y, it.scratch[:0])
	for _, j := range it.scratch {
		if int(j) == i {
			continue
		}
		separate(pt, &p[j])
	}
}

func separate(pt, other *Particle) {
	dx := pt.X - other.X
	dy := pt.Y - other.Y
	d := math.Hypot(dx, dy)
	if d <= 0 || d >= SeparationRadius {
		return
	}
	push := (SeparationRadius - d) / SeparationRadius * SeparationImpulse
	pt.VX += dx / d * push
	pt.VY += dy / d * push
}
