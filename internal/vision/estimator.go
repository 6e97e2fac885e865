package vision

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"driftfield/internal/field"
)

// Analysis tuning. The estimator never sees full frames: it works on a small
// analysis buffer and samples every 4th pixel on both axes.
const (
	AnalysisWidth  = 160
	AnalysisHeight = 120
	SampleStep     = 4

	// DiffThreshold is the per-sample motion cutoff: absolute channel
	// differences summed over R, G and B.
	DiffThreshold = 30

	// MinMotionPixels is the floor below which no pointer is emitted.
	MinMotionPixels = 40

	// OpenMotionPixels is the second, higher count threshold: more moving
	// samples means a larger inferred hand area, read as an open hand.
	OpenMotionPixels = 180

	// StartTimeout bounds the wait for the first decodable frame.
	StartTimeout = 6 * time.Second
)

// State is the estimator lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateActive
)

// Estimator infers a pointer position from raw pixel motion between
// consecutive downscaled camera frames. No landmarks, no model: the pointer
// is the centroid of pixels that changed, and the open/closed signal is just
// how many of them changed.
//
// It publishes into a shared PointerSlot as the slot's single writer while
// active. Ticks are driven externally, one per rendered frame.
type Estimator struct {
	src  FrameSource
	slot *field.PointerSlot
	log  *zap.Logger

	mu      sync.Mutex
	state   State
	stopped bool // stop requested while initializing
	srcW    int
	srcH    int
	canvasW float64
	canvasH float64
	prev    []uint8
	cur     []uint8
}

func NewEstimator(src FrameSource, slot *field.PointerSlot, canvasW, canvasH float64, log *zap.Logger) *Estimator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Estimator{
		src:     src,
		slot:    slot,
		log:     log,
		canvasW: canvasW,
		canvasH: canvasH,
	}
}

// SetCanvasSize updates the space pointer estimates are scaled into.
func (e *Estimator) SetCanvasSize(w, h float64) {
	e.mu.Lock()
	e.canvasW = w
	e.canvasH = h
	e.mu.Unlock()
}

func (e *Estimator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start acquires the camera and waits for the first decodable frame, bounded
// by StartTimeout. On failure it reports one of the camera error kinds and
// returns to Idle; the caller decides whether to try again. A Stop arriving
// mid-initialization lets the setup finish, then tears straight down.
func (e *Estimator) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return nil
	}
	e.state = StateInitializing
	e.stopped = false
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, StartTimeout)
	defer cancel()

	w, h, err := e.src.Start(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateIdle
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrCameraTimeout
		}
		e.log.Warn("camera start failed", zap.Error(err))
		return err
	}
	if e.stopped {
		// Stop raced the setup: finish it, then release the device rather
		// than leave a dangling handle.
		e.src.Stop()
		e.state = StateIdle
		return nil
	}
	e.srcW = w
	e.srcH = h
	e.prev = nil
	e.cur = make([]uint8, AnalysisWidth*AnalysisHeight*4)
	e.state = StateActive
	e.log.Info("camera active", zap.Int("width", w), zap.Int("height", h))
	return nil
}

// Stop halts analysis and releases the camera. Idempotent from any state.
func (e *Estimator) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateInitializing:
		e.stopped = true
	case StateActive:
		e.src.Stop()
		e.prev = nil
		e.cur = nil
		e.state = StateIdle
		e.slot.Clear()
	}
}

// Tick runs one analysis step: grab the latest frame, downscale, diff
// against the previous analysis buffer, publish the result. Frame read
// errors are transient and skipped; the current frame becomes the new
// previous frame regardless of whether a pointer was emitted.
func (e *Estimator) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		return
	}

	frame, err := e.src.Latest()
	if err != nil {
		return // expected transient condition, e.g. frame not yet decoded
	}

	downscale(frame, e.cur)

	if e.prev != nil {
		if ptr, ok := e.analyze(); ok {
			e.slot.Set(&ptr)
		} else {
			e.slot.Clear()
		}
	}

	// Swap buffers; cur is overwritten next tick.
	if e.prev == nil {
		e.prev = make([]uint8, len(e.cur))
	}
	e.prev, e.cur = e.cur, e.prev
}

// analyze counts motion samples between cur and prev and derives the
// pointer. Reports false when motion stays below the minimum threshold.
func (e *Estimator) analyze() (field.PointerState, bool) {
	count := 0
	sumX := 0
	sumY := 0
	for y := 0; y < AnalysisHeight; y += SampleStep {
		row := y * AnalysisWidth * 4
		for x := 0; x < AnalysisWidth; x += SampleStep {
			i := row + x*4
			diff := absDiff(e.cur[i], e.prev[i]) +
				absDiff(e.cur[i+1], e.prev[i+1]) +
				absDiff(e.cur[i+2], e.prev[i+2])
			if diff > DiffThreshold {
				count++
				sumX += x
				sumY += y
			}
		}
	}
	if count <= MinMotionPixels {
		return field.PointerState{}, false
	}

	cx := float64(sumX) / float64(count)
	cy := float64(sumY) / float64(count)

	// The camera view is mirrored relative to natural on-screen interaction.
	cx = float64(AnalysisWidth-1) - cx

	return field.PointerState{
		X:    cx / float64(AnalysisWidth-1) * e.canvasW,
		Y:    cy / float64(AnalysisHeight-1) * e.canvasH,
		Open: count > OpenMotionPixels,
	}, true
}

// downscale nearest-neighbor samples frame into the analysis buffer.
func downscale(f Frame, dst []uint8) {
	for y := 0; y < AnalysisHeight; y++ {
		sy := y * f.H / AnalysisHeight
		for x := 0; x < AnalysisWidth; x++ {
			sx := x * f.W / AnalysisWidth
			si := (sy*f.W + sx) * 4
			di := (y*AnalysisWidth + x) * 4
			dst[di] = f.Pix[si]
			dst[di+1] = f.Pix[si+1]
			dst[di+2] = f.Pix[si+2]
			dst[di+3] = 255
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
