package field

import "fmt"

// Canvas defaults.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Simulation defaults.
const (
	DefaultParticleCount       = 400
	DefaultInteractionRadius   = 150.0
	DefaultInteractionStrength = 0.5
)

// Per-tick integration constants.
const (
	SeparationRadius  = 20.0 // short-range repulsion cutoff (px)
	SeparationImpulse = 0.05
	Damping           = 0.98
	Gravity           = 0.02
	BounceDamp        = -0.5 // velocity multiplier on boundary hit
	LinkRadius        = 50.0 // connection line cutoff (px), visual only
)

// Particle spawn ranges.
const (
	MinRadius   = 1.0
	MaxRadius   = 4.0
	MinAlpha    = 0.5
	MaxAlpha    = 1.0
	MaxInitAge  = 100
	MinLifespan = 100
	MaxLifespan = 200
)

// GridThreshold is the particle count past which pairwise passes switch from
// the brute-force O(n²) scan to the uniform grid. The grid buckets
// start-of-tick positions; see Grid for the bounded-displacement assumption.
const GridThreshold = 512

// Params is the configuration surface. Read at (re)initialization only;
// changing a value mid-run has no effect until the next Reinitialize.
type Params struct {
	ParticleCount       int
	InteractionRadius   float64 // px
	InteractionStrength float64 // unitless multiplier
	Turbulence          float64 // Perlin flow-field gain, 0 = off
}

func DefaultParams() Params {
	return Params{
		ParticleCount:       DefaultParticleCount,
		InteractionRadius:   DefaultInteractionRadius,
		InteractionStrength: DefaultInteractionStrength,
	}
}

func (p Params) Validate() error {
	if p.ParticleCount <= 0 {
		return fmt.Errorf("particle count must be > 0, got %d", p.ParticleCount)
	}
	if p.InteractionRadius <= 0 {
		return fmt.Errorf("interaction radius must be > 0, got %g", p.InteractionRadius)
	}
	if p.InteractionStrength < 0 {
		return fmt.Errorf("interaction strength must be >= 0, got %g", p.InteractionStrength)
	}
	if p.Turbulence < 0 {
		return fmt.Errorf("turbulence must be >= 0, got %g", p.Turbulence)
	}
	return nil
}
