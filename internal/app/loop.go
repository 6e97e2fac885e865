package app

import (
	"sync"

	"driftfield/internal/field"
	"driftfield/internal/render"
	"driftfield/internal/vision"
)

// TickSource delivers simulation ticks, nominally one per display refresh.
// The desktop front end implements it on top of the window swap; tests drive
// ticks by hand.
type TickSource interface {
	// Next blocks until the next tick and reports false once the source is
	// exhausted or closed.
	Next() bool
}

// PointerSource says who owns the shared pointer slot right now.
type PointerSource int

const (
	SourceNone PointerSource = iota
	SourceAdapter
	SourceEstimator
)

// Loop drives one integrate+render pass per tick and owns the lifecycle
// surface exposed to the UI shell: Start, Stop, Reinitialize,
// SetHandPosition. All of it is idempotent and callable at any time.
type Loop struct {
	mu sync.Mutex

	params field.Params
	store  *field.Store
	integ  *field.Integrator
	rend   *render.Renderer
	surf   *render.Surface
	slot   field.PointerSlot

	source    PointerSource
	estimator *vision.Estimator
	hum       *Hum

	running bool
}

// NewLoop validates params and builds a stopped loop with an initialized
// particle set.
func NewLoop(params field.Params, width, height int, seed uint64) (*Loop, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	l := &Loop{
		params: params,
		store:  field.NewStore(seed),
		integ:  field.NewIntegrator(params, int64(seed)),
		rend:   render.NewRenderer(params),
		surf:   render.NewSurface(width, height),
	}
	l.store.Initialize(float64(width), float64(height), params.ParticleCount)
	return l, nil
}

// Surface exposes the canvas for presentation. The returned pointer is
// stable; only its pixel contents change per tick (and its buffer on resize).
func (l *Loop) Surface() *render.Surface { return l.surf }

// Slot exposes the shared pointer cell for the estimator to publish into.
func (l *Loop) Slot() *field.PointerSlot { return &l.slot }

func (l *Loop) Params() field.Params { return l.params }

// Start begins advancing on ticks. Idempotent.
func (l *Loop) Start() {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()
}

// Stop freezes the simulation. Idempotent; the canvas keeps its last frame.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
	if h := l.hum; h != nil {
		h.SetLevel(0, false)
	}
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Reinitialize rebuilds the particle set at the current canvas size, reusing
// the last-known count. Params changes take effect here and only here.
func (l *Loop) Reinitialize() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.Reinitialize(float64(l.surf.W), float64(l.surf.H))
}

// Resize follows the canvas without rebuilding particles; the next tick's
// boundary clamp repairs anything left out of bounds.
func (l *Loop) Resize(width, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if width == l.surf.W && height == l.surf.H {
		return
	}
	l.surf.Resize(width, height)
	if l.estimator != nil {
		l.estimator.SetCanvasSize(float64(width), float64(height))
	}
}

// SetHandPosition is the direct input adapter path: coordinates already in
// canvas-pixel space, nil meaning no interaction. Ignored while the
// estimator owns the slot.
func (l *Loop) SetHandPosition(p *field.PointerState) {
	l.mu.Lock()
	src := l.source
	l.mu.Unlock()
	if src != SourceAdapter {
		return
	}
	l.slot.Set(p)
}

// UseAdapter hands the pointer slot to the direct input adapter, clearing
// any stale estimate so the field doesn't chase a ghost position.
func (l *Loop) UseAdapter() {
	l.mu.Lock()
	l.source = SourceAdapter
	l.mu.Unlock()
	l.slot.Clear()
}

// UseEstimator hands the pointer slot to the motion estimator. The estimator
// adopts the current canvas size at handover: any resizes that happened while
// another source owned the slot were never forwarded to it.
func (l *Loop) UseEstimator(est *vision.Estimator) {
	l.mu.Lock()
	l.source = SourceEstimator
	l.estimator = est
	if est != nil {
		est.SetCanvasSize(float64(l.surf.W), float64(l.surf.H))
	}
	l.mu.Unlock()
	l.slot.Clear()
}

// Source reports the current pointer slot owner.
func (l *Loop) Source() PointerSource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

// SetHum attaches the interaction audio feedback. Optional.
func (l *Loop) SetHum(h *Hum) {
	l.mu.Lock()
	l.hum = h
	l.mu.Unlock()
}

// Step advances exactly one tick: read the latest pointer snapshot,
// integrate, render. A stopped loop steps to nowhere.
func (l *Loop) Step() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}

	var ptr *field.PointerState
	if p, ok := l.slot.Get(); ok {
		ptr = &p
	}

	w := float64(l.surf.W)
	h := float64(l.surf.H)
	l.integ.Step(l.store.Particles(), ptr, w, h)
	l.rend.Frame(l.surf, l.store.Particles(), ptr)

	if l.hum != nil {
		if ptr != nil {
			l.hum.SetLevel(1, ptr.Open)
		} else {
			l.hum.SetLevel(0, false)
		}
	}
}

// Run steps the loop until the tick source closes.
func (l *Loop) Run(ts TickSource) {
	for ts.Next() {
		l.Step()
	}
}
