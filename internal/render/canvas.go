package render

import (
	"math"

	"driftfield/internal/field"
)

// Surface is a plain RGBA pixel buffer, always opaque. It is the "canvas":
// the trail effect lives entirely in its pixels, attenuated a little each
// frame instead of being cleared. The display layer uploads Pix as a texture.
type Surface struct {
	W, H int
	Pix  []uint8 // RGBA, len = W*H*4
}

func NewSurface(w, h int) *Surface {
	s := &Surface{}
	s.Resize(w, h)
	return s
}

// Resize reallocates the buffer and resets it to the background colour.
// Previous trail pixels do not survive a resize.
func (s *Surface) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	s.W = w
	s.H = h
	s.Pix = make([]uint8, w*h*4)
	s.Fill(field.Background)
}

// Fill sets every pixel to c.
func (s *Surface) Fill(c field.RGB) {
	for i := 0; i < len(s.Pix); i += 4 {
		s.Pix[i] = c.R
		s.Pix[i+1] = c.G
		s.Pix[i+2] = c.B
		s.Pix[i+3] = 255
	}
}

// Tint composites c over the whole buffer at the given opacity. With a low
// alpha this fades the previous frame toward c, which is the trail pass.
func (s *Surface) Tint(c field.RGB, alpha float64) {
	a := uint32(clamp01(alpha) * 255)
	if a == 0 {
		return
	}
	inv := 255 - a
	cr := uint32(c.R) * a
	cg := uint32(c.G) * a
	cb := uint32(c.B) * a
	for i := 0; i < len(s.Pix); i += 4 {
		s.Pix[i] = uint8((cr + uint32(s.Pix[i])*inv) / 255)
		s.Pix[i+1] = uint8((cg + uint32(s.Pix[i+1])*inv) / 255)
		s.Pix[i+2] = uint8((cb + uint32(s.Pix[i+2])*inv) / 255)
	}
}

// At returns the pixel at (x, y); out-of-bounds reads return black.
func (s *Surface) At(x, y int) field.RGB {
	if x < 0 || y < 0 || x >= s.W || y >= s.H {
		return field.RGB{}
	}
	i := (y*s.W + x) * 4
	return field.RGB{R: s.Pix[i], G: s.Pix[i+1], B: s.Pix[i+2]}
}

// blend does src-over of c at opacity a onto one pixel.
func (s *Surface) blend(x, y int, c field.RGB, a float64) {
	if x < 0 || y < 0 || x >= s.W || y >= s.H {
		return
	}
	ai := uint32(clamp01(a) * 255)
	if ai == 0 {
		return
	}
	inv := 255 - ai
	i := (y*s.W + x) * 4
	s.Pix[i] = uint8((uint32(c.R)*ai + uint32(s.Pix[i])*inv) / 255)
	s.Pix[i+1] = uint8((uint32(c.G)*ai + uint32(s.Pix[i+1])*inv) / 255)
	s.Pix[i+2] = uint8((uint32(c.B)*ai + uint32(s.Pix[i+2])*inv) / 255)
}

// add does additive blending of c scaled by w onto one pixel, saturating at
// white. Used for glows and halos.
func (s *Surface) add(x, y int, c field.RGB, w float64) {
	if x < 0 || y < 0 || x >= s.W || y >= s.H {
		return
	}
	wi := uint32(clamp01(w) * 255)
	if wi == 0 {
		return
	}
	i := (y*s.W + x) * 4
	s.Pix[i] = satAdd(s.Pix[i], uint32(c.R)*wi/255)
	s.Pix[i+1] = satAdd(s.Pix[i+1], uint32(c.G)*wi/255)
	s.Pix[i+2] = satAdd(s.Pix[i+2], uint32(c.B)*wi/255)
}

// Line draws a line with src-over blending at opacity a.
func (s *Surface) Line(x0, y0, x1, y1 float64, c field.RGB, a float64) {
	dx := x1 - x0
	dy := y1 - y0
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps <= 0 {
		s.blend(int(math.Round(x0)), int(math.Round(y0)), c, a)
		return
	}
	sx := dx / float64(steps)
	sy := dy / float64(steps)
	x, y := x0, y0
	for i := 0; i <= steps; i++ {
		s.blend(int(math.Round(x)), int(math.Round(y)), c, a)
		x += sx
		y += sy
	}
}

// FillCircle draws a solid disc with src-over blending at opacity a.
func (s *Surface) FillCircle(cx, cy, r float64, c field.RGB, a float64) {
	if r <= 0 {
		return
	}
	x0 := int(math.Floor(cx - r))
	x1 := int(math.Ceil(cx + r))
	y0 := int(math.Floor(cy - r))
	y1 := int(math.Ceil(cy + r))
	r2 := r * r
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r2 {
				s.blend(x, y, c, a)
			}
		}
	}
}

// GlowCircle draws an additive radial gradient: full weight at the centre,
// zero at the rim, quadratic falloff in between.
func (s *Surface) GlowCircle(cx, cy, r float64, c field.RGB, w float64) {
	if r <= 0 || w <= 0 {
		return
	}
	x0 := int(math.Floor(cx - r))
	x1 := int(math.Ceil(cx + r))
	y0 := int(math.Floor(cy - r))
	y1 := int(math.Ceil(cy + r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			d := math.Sqrt(dx*dx+dy*dy) / r
			if d >= 1 {
				continue
			}
			falloff := 1 - d
			s.add(x, y, c, w*falloff*falloff)
		}
	}
}

func satAdd(dst uint8, v uint32) uint8 {
	sum := uint32(dst) + v
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
