package display

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"driftfield/internal/app"
	"driftfield/internal/field"
	"driftfield/internal/vision"
)

// Config selects the pointer source and simulation parameters for a run.
type Config struct {
	Params field.Params
	Camera bool   // start on the motion estimator instead of the mouse
	Device string // V4L2 device path, camera mode only
	Mute   bool
	Width  int
	Height int
}

// Run owns the desktop session: window, GL, audio, the simulation loop and
// the estimator's analysis loop, both driven by the vsync'd frame callback.
func Run(cfg Config, log *zap.Logger) error {
	runtime.LockOSThread()

	if cfg.Width <= 0 {
		cfg.Width = field.DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = field.DefaultHeight
	}

	window, err := initWindow(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	fbW, fbH := window.GetFramebufferSize()
	seed := uint64(time.Now().UnixNano())
	loop, err := app.NewLoop(cfg.Params, fbW, fbH, seed)
	if err != nil {
		return err
	}

	presenter, err := NewPresenter()
	if err != nil {
		return fmt.Errorf("presenter: %w", err)
	}
	defer presenter.Destroy()

	if !cfg.Mute {
		if hum, err := app.NewHum(); err != nil {
			log.Warn("audio init failed, continuing without sound", zap.Error(err))
		} else {
			hum.Start()
			defer hum.Close()
			loop.SetHum(hum)
		}
	}

	// The estimator exists even in mouse mode so Tab can switch to it later.
	src := vision.NewCameraSource(cfg.Device, log)
	est := vision.NewEstimator(src, loop.Slot(), float64(fbW), float64(fbH), log)
	defer est.Stop()

	if cfg.Camera {
		if err := startEstimator(est, loop, log); err != nil {
			return err
		}
	} else {
		loop.UseAdapter()
	}

	loop.Start()
	input := NewInput()

	for !window.ShouldClose() {
		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
			continue
		}
		if input.JustPressed(window, glfw.KeySpace) {
			if loop.Running() {
				loop.Stop()
			} else {
				loop.Start()
			}
		}
		if input.JustPressed(window, glfw.KeyR) {
			loop.Reinitialize()
		}
		if input.JustPressed(window, glfw.KeyTab) {
			toggleSource(est, loop, log)
		}

		fbW, fbH = window.GetFramebufferSize()
		if fbW <= 0 || fbH <= 0 {
			continue
		}
		loop.Resize(fbW, fbH)

		// Two per-frame callback chains: pointer sourcing, then simulation.
		if loop.Source() == app.SourceAdapter {
			FeedMouse(window, loop, fbW, fbH)
		} else {
			est.Tick()
		}
		loop.Step()

		presenter.Draw(loop.Surface(), fbW, fbH)
		window.SwapBuffers()
	}
	return nil
}

func startEstimator(est *vision.Estimator, loop *app.Loop, log *zap.Logger) error {
	if err := est.Start(context.Background()); err != nil {
		switch {
		case errors.Is(err, vision.ErrCameraNotFound),
			errors.Is(err, vision.ErrCameraUnavailable),
			errors.Is(err, vision.ErrCameraTimeout):
			return fmt.Errorf("camera source: %w", err)
		default:
			return err
		}
	}
	loop.UseEstimator(est)
	return nil
}

// toggleSource flips between mouse and motion estimation at runtime. A
// camera failure logs once and leaves the mouse in charge.
func toggleSource(est *vision.Estimator, loop *app.Loop, log *zap.Logger) {
	if loop.Source() == app.SourceEstimator {
		est.Stop()
		loop.UseAdapter()
		log.Info("pointer source: mouse")
		return
	}
	if err := startEstimator(est, loop, log); err != nil {
		log.Warn("pointer source unchanged", zap.Error(err))
		loop.UseAdapter()
		return
	}
	log.Info("pointer source: camera")
}
