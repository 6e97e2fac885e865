package render

import (
	"math"

	"driftfield/internal/field"
)

// Frame tuning.
const (
	trailAlpha   = 0.15 // opacity of the per-frame background fill
	linkAlpha    = 0.20 // peak opacity of a zero-length connection line
	glowScale    = 3.0  // glow radius as a multiple of the particle radius
	glowWeight   = 0.55 // glow brightness relative to the particle fade
	haloWeight   = 0.16 // peak brightness of the pointer halo
	haloDotR     = 4.0
	haloDotAlpha = 0.9
)

// Renderer draws one frame of the field onto a Surface. It holds no state of
// its own: the only persistence is the trail, and the trail is the surface.
type Renderer struct {
	params  field.Params
	scratch []int32
}

func NewRenderer(params field.Params) *Renderer {
	return &Renderer{params: params}
}

// Frame composites the trail fade, connection lines, particles, and the
// pointer halo onto dst, in that order.
func (r *Renderer) Frame(dst *Surface, p []field.Particle, ptr *field.PointerState) {
	dst.Tint(field.Background, trailAlpha)
	r.drawLinks(dst, p)
	for i := range p {
		drawParticle(dst, &p[i])
	}
	if ptr != nil {
		r.drawHalo(dst, *ptr)
	}
}

// drawLinks connects pairs closer than LinkRadius, fainter with distance.
// Same complexity ceiling as the separation pass, and the same grid cutover.
func (r *Renderer) drawLinks(dst *Surface, p []field.Particle) {
	if len(p) > field.GridThreshold {
		g := field.BuildGrid(p, float64(dst.W), float64(dst.H), field.LinkRadius)
		for i := range p {
			r.scratch = g.Neighbors(p[i].X, p[i].Y, r.scratch[:0])
			for _, j := range r.scratch {
				if int(j) > i {
					linkPair(dst, &p[i], &p[j])
				}
			}
		}
		return
	}
	for i := range p {
		for j := i + 1; j < len(p); j++ {
			linkPair(dst, &p[i], &p[j])
		}
	}
}

func linkPair(dst *Surface, a, b *field.Particle) {
	d := math.Hypot(a.X-b.X, a.Y-b.Y)
	if d >= field.LinkRadius {
		return
	}
	alpha := (1 - d/field.LinkRadius) * linkAlpha
	dst.Line(a.X, a.Y, b.X, b.Y, a.Color, alpha)
}

// drawParticle renders the soft glow then the solid core. Both breathe with
// the particle's lifecycle, peaking at the midpoint.
func drawParticle(dst *Surface, p *field.Particle) {
	fade := p.Alpha * math.Sin(float64(p.Age)/float64(p.Lifespan)*math.Pi)
	if fade <= 0 {
		return
	}
	dst.GlowCircle(p.X, p.Y, p.Radius*glowScale, p.Color, fade*glowWeight)
	dst.FillCircle(p.X, p.Y, p.Radius, p.Color, fade)
}

// drawHalo marks the interaction region: a soft disc the size of the
// interaction radius, hue keyed to the gesture, and a solid centre dot.
func (r *Renderer) drawHalo(dst *Surface, ptr field.PointerState) {
	c := field.HaloClosed
	if ptr.Open {
		c = field.HaloOpen
	}
	dst.GlowCircle(ptr.X, ptr.Y, r.params.InteractionRadius, c, haloWeight)
	dst.FillCircle(ptr.X, ptr.Y, haloDotR, c, haloDotAlpha)
}
