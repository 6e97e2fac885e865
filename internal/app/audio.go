package app

import (
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/oto/v2"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	BitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)
)

// Hum pitch per gesture. The open hand sits a fifth above the closed one so
// the two states are tellable apart with eyes shut.
const (
	humFreqClosed = 110.0
	humFreqOpen   = 165.0
	humPeakGain   = 0.18
	humEase       = 0.0008 // per-sample gain approach; ~0.25 s full swing
)

// Hum is a continuous synthesized tone whose gain follows pointer presence.
// Silent when there is no interaction. Synthesized, not sampled: no asset
// files, just a generator behind an io.Reader.
type Hum struct {
	ctx   *oto.Context
	ready chan struct{}
	gen   *humReader

	mu     sync.Mutex
	player oto.Player
	closed bool
}

func NewHum() (*Hum, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BitDepth)
	if err != nil {
		return nil, err
	}
	gen := &humReader{}
	gen.freq.Store(math.Float64bits(humFreqClosed))
	return &Hum{ctx: ctx, ready: ready, gen: gen}, nil
}

// Start begins playback once the audio context is ready. A Close arriving
// before the context comes up wins: no player is created after it.
func (h *Hum) Start() {
	go func() {
		<-h.ready
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			return
		}
		h.player = h.ctx.NewPlayer(h.gen)
		h.player.Play()
	}()
}

// SetLevel sets the target gain (0..1 of the peak) and the gesture pitch.
func (h *Hum) SetLevel(level float64, open bool) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	h.gen.target.Store(math.Float64bits(level * humPeakGain))
	f := humFreqClosed
	if open {
		f = humFreqOpen
	}
	h.gen.freq.Store(math.Float64bits(f))
}

// Close stops playback. Safe to call more than once, and safe concurrently
// with a Start still waiting on audio init.
func (h *Hum) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.player != nil {
		h.player.Close()
		h.player = nil
	}
}

// humReader streams interleaved stereo float32 samples forever, easing the
// gain toward its target to avoid clicks on state changes.
type humReader struct {
	target atomic.Uint64 // float64 bits
	freq   atomic.Uint64 // float64 bits
	gain   float64
	phase  float64
}

func (r *humReader) Read(p []byte) (int, error) {
	target := math.Float64frombits(r.target.Load())
	freq := math.Float64frombits(r.freq.Load())
	step := 2 * math.Pi * freq / SampleRate

	n := len(p) / 8 * 8 // whole stereo float32 frames
	for i := 0; i < n; i += 8 {
		if r.gain < target {
			r.gain = math.Min(target, r.gain+humEase)
		} else if r.gain > target {
			r.gain = math.Max(target, r.gain-humEase)
		}
		// Fundamental plus a quiet octave for a little body.
		s := math.Sin(r.phase) + 0.35*math.Sin(2*r.phase)
		v := float32(s * r.gain)
		bits := math.Float32bits(v)
		for c := 0; c < ChannelCount; c++ {
			off := i + c*4
			p[off] = byte(bits)
			p[off+1] = byte(bits >> 8)
			p[off+2] = byte(bits >> 16)
			p[off+3] = byte(bits >> 24)
		}
		r.phase += step
		if r.phase > 2*math.Pi {
			r.phase -= 2 * math.Pi
		}
	}
	return n, nil
}

var _ io.Reader = (*humReader)(nil)
