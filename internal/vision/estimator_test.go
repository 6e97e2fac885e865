package vision

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftfield/internal/field"
)

// fakeSource feeds the estimator scripted frames, standing in for a camera.
type fakeSource struct {
	mu       sync.Mutex
	startErr error
	frames   []Frame
	frameErr error
	next     int
	started  int
	stopped  int

	startGate    chan struct{} // when set, Start blocks until closed
	startedGate  chan struct{} // when set, closed once Start is entered
	gateSignaled bool
}

func (f *fakeSource) Start(ctx context.Context) (int, int, error) {
	f.mu.Lock()
	if f.startedGate != nil && !f.gateSignaled {
		f.gateSignaled = true
		close(f.startedGate)
	}
	gate := f.startGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return 0, 0, f.startErr
	}
	f.started++
	return CaptureWidth, CaptureHeight, nil
}

func (f *fakeSource) Latest() (Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frameErr != nil {
		return Frame{}, f.frameErr
	}
	if len(f.frames) == 0 {
		return Frame{}, fmt.Errorf("no frame")
	}
	fr := f.frames[f.next]
	if f.next < len(f.frames)-1 {
		f.next++
	}
	return fr, nil
}

func (f *fakeSource) Stop() {
	f.mu.Lock()
	f.stopped++
	f.mu.Unlock()
}

func (f *fakeSource) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// solidFrame is a uniform gray capture-sized frame.
func solidFrame() Frame {
	pix := make([]uint8, CaptureWidth*CaptureHeight*4)
	for i := range pix {
		pix[i] = 90
	}
	return Frame{Pix: pix, W: CaptureWidth, H: CaptureHeight}
}

// blockFrame is black with a white rectangle at (x0,y0)-(x1,y1) in capture
// coordinates.
func blockFrame(x0, y0, x1, y1 int) Frame {
	pix := make([]uint8, CaptureWidth*CaptureHeight*4)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := (y*CaptureWidth + x) * 4
			pix[i] = 255
			pix[i+1] = 255
			pix[i+2] = 255
		}
	}
	return Frame{Pix: pix, W: CaptureWidth, H: CaptureHeight}
}

func newTestEstimator(src FrameSource, slot *field.PointerSlot) *Estimator {
	return NewEstimator(src, slot, 800, 600, nil)
}

func TestEstimator_StartStopLifecycle(t *testing.T) {
	src := &fakeSource{frames: []Frame{solidFrame()}}
	var slot field.PointerSlot
	e := newTestEstimator(src, &slot)

	require.Equal(t, StateIdle, e.State())
	require.NoError(t, e.Start(context.Background()))
	require.Equal(t, StateActive, e.State())

	// Second Start is a no-op.
	require.NoError(t, e.Start(context.Background()))

	e.Stop()
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, 1, src.stopCount())

	// Stop is idempotent from Idle too.
	e.Stop()
	assert.Equal(t, 1, src.stopCount())
}

func TestEstimator_StartFailureKinds(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		wantErr error
	}{
		{"permission denied", ErrCameraUnavailable, ErrCameraUnavailable},
		{"no device", ErrCameraNotFound, ErrCameraNotFound},
		{"stream timeout", context.DeadlineExceeded, ErrCameraTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{startErr: tt.sendErr}
			var slot field.PointerSlot
			e := newTestEstimator(src, &slot)

			err := e.Start(context.Background())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateIdle, e.State(), "failed start returns to Idle")
		})
	}
}

func TestEstimator_StopDuringInitTearsDown(t *testing.T) {
	src := &fakeSource{
		frames:      []Frame{solidFrame()},
		startGate:   make(chan struct{}),
		startedGate: make(chan struct{}),
	}
	var slot field.PointerSlot
	e := newTestEstimator(src, &slot)

	done := make(chan error, 1)
	go func() { done <- e.Start(context.Background()) }()

	<-src.startedGate
	e.Stop() // arrives while initializing
	close(src.startGate)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("start did not return")
	}
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, 1, src.stopCount(), "device released, not left dangling")
}

func TestEstimator_IdenticalFramesEmitNoPointer(t *testing.T) {
	src := &fakeSource{frames: []Frame{solidFrame()}}
	var slot field.PointerSlot
	e := newTestEstimator(src, &slot)
	require.NoError(t, e.Start(context.Background()))

	e.Tick() // primes the previous-frame buffer
	e.Tick() // identical frame: zero motion pixels

	_, ok := slot.Get()
	assert.False(t, ok, "no motion means no pointer")
}

func TestEstimator_ShiftedBlockEmitsPointer(t *testing.T) {
	// A 128x96 block jumping 32 px right leaves two 32 px wide strips of
	// changed pixels; enough samples to emit a pointer, too few to read as
	// an open hand.
	a := blockFrame(32, 48, 160, 144)
	b := blockFrame(64, 48, 192, 144)
	src := &fakeSource{frames: []Frame{a, b}}
	var slot field.PointerSlot
	e := newTestEstimator(src, &slot)
	require.NoError(t, e.Start(context.Background()))

	e.Tick()
	e.Tick()

	ptr, ok := slot.Get()
	require.True(t, ok, "shifted block must register as motion")
	assert.False(t, ptr.Open)

	// Motion strips sit at analysis x [16,32) and [80,96): centroid x 54 of
	// 159, mirrored to 105, scaled to an 800 px canvas.
	assert.InDelta(t, (159.0-54.0)/159.0*800.0, ptr.X, 25)
	// Strips span analysis y [24,72): sampled centroid 46 of 119, on 600 px.
	assert.InDelta(t, 46.0/119.0*600.0, ptr.Y, 25)
}

func TestEstimator_LargeMotionReadsOpen(t *testing.T) {
	// A 256x192 block jumping 64 px covers far more sampled pixels than the
	// open-hand threshold.
	a := blockFrame(0, 24, 256, 216)
	b := blockFrame(64, 24, 320, 216)
	src := &fakeSource{frames: []Frame{a, b}}
	var slot field.PointerSlot
	e := newTestEstimator(src, &slot)
	require.NoError(t, e.Start(context.Background()))

	e.Tick()
	e.Tick()

	ptr, ok := slot.Get()
	require.True(t, ok)
	assert.True(t, ptr.Open, "large motion area reads as an open hand")
}

func TestEstimator_TransientFrameErrorIsSwallowed(t *testing.T) {
	a := blockFrame(32, 48, 160, 144)
	b := blockFrame(64, 48, 192, 144)
	src := &fakeSource{frames: []Frame{a, b}}
	var slot field.PointerSlot
	e := newTestEstimator(src, &slot)
	require.NoError(t, e.Start(context.Background()))

	e.Tick()
	e.Tick()
	_, ok := slot.Get()
	require.True(t, ok)

	// A read failure skips the tick and keeps the last published state.
	src.mu.Lock()
	src.frameErr = fmt.Errorf("frame not yet decoded")
	src.mu.Unlock()
	e.Tick()

	_, ok = slot.Get()
	assert.True(t, ok, "transient errors must not clear the pointer")
	assert.Equal(t, StateActive, e.State(), "analysis loop keeps running")
}

func TestEstimator_TickWhileIdleIsNoOp(t *testing.T) {
	src := &fakeSource{frames: []Frame{solidFrame()}}
	var slot field.PointerSlot
	e := newTestEstimator(src, &slot)

	assert.NotPanics(t, func() { e.Tick() })
	_, ok := slot.Get()
	assert.False(t, ok)
}

func TestEstimator_StopClearsPublishedPointer(t *testing.T) {
	a := blockFrame(32, 48, 160, 144)
	b := blockFrame(64, 48, 192, 144)
	src := &fakeSource{frames: []Frame{a, b}}
	var slot field.PointerSlot
	e := newTestEstimator(src, &slot)
	require.NoError(t, e.Start(context.Background()))

	e.Tick()
	e.Tick()
	_, ok := slot.Get()
	require.True(t, ok)

	e.Stop()
	_, ok = slot.Get()
	assert.False(t, ok, "stopping the estimator retires its estimate")
}
