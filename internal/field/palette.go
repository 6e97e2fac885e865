package field

import colorful "github.com/lucasb-eyer/go-colorful"

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// HSV builds an RGB from hue (degrees), saturation and value.
func HSV(h, s, v float64) RGB {
	return fromColorful(colorful.Hsv(h, s, v))
}

// Palette is the fixed particle palette: five hues spread across the cool
// half of the wheel so trails read as a single field rather than confetti.
var Palette = [5]RGB{
	HSV(180, 0.85, 1.00), // cyan
	HSV(210, 0.80, 1.00), // azure
	HSV(250, 0.70, 1.00), // violet
	HSV(300, 0.65, 0.95), // magenta
	HSV(150, 0.75, 0.95), // spring green
}

// Halo hues encode the inferred gesture: warm for an open hand (repel),
// cold for a closed one (attract).
var (
	HaloOpen   = HSV(28, 0.90, 1.00)
	HaloClosed = HSV(195, 0.85, 1.00)
)

// Background is the trail fill colour; slightly blue so faded trails keep
// a cold cast instead of going muddy grey.
var Background = RGB{R: 8, G: 10, B: 18}
