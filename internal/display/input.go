package display

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"driftfield/internal/app"
	"driftfield/internal/field"
)

// Input tracks edge-triggered keys, mirroring GetKey state between frames.
type Input struct {
	prevKeys map[glfw.Key]bool
}

func NewInput() *Input {
	return &Input{prevKeys: make(map[glfw.Key]bool)}
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

// FeedMouse is the direct pointer adapter: cursor position scaled to
// framebuffer (canvas) pixels, left button held meaning a closed hand
// (attract). The cursor leaving the window clears the pointer.
func FeedMouse(window *glfw.Window, loop *app.Loop, fbW, fbH int) {
	cx, cy := window.GetCursorPos()
	winW, winH := window.GetSize()
	if winW <= 0 || winH <= 0 {
		return
	}
	x := cx * float64(fbW) / float64(winW)
	y := cy * float64(fbH) / float64(winH)

	if x < 0 || y < 0 || x > float64(fbW) || y > float64(fbH) {
		loop.SetHandPosition(nil)
		return
	}
	closed := window.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press
	loop.SetHandPosition(&field.PointerState{X: x, Y: y, Open: !closed})
}
