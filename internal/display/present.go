package display

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"driftfield/internal/render"
)

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

// Presenter uploads the software canvas as a texture and draws it as a
// fullscreen quad once per frame.
type Presenter struct {
	prog uint32
	vao  uint32
	vbo  uint32
	tex  uint32
	uTex int32

	texW int
	texH int
}

func NewPresenter() (*Presenter, error) {
	prog, err := linkProgram(canvasVertSrc, canvasFragSrc)
	if err != nil {
		return nil, fmt.Errorf("canvas program: %w", err)
	}

	p := &Presenter{prog: prog}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	quadVerts := [12]float32{
		0, 0, 1, 0, 1, 1,
		0, 0, 1, 1, 0, 1,
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVerts)*4, gl.Ptr(&quadVerts[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, glOffset(0))
	p.vao = vao
	p.vbo = vbo

	gl.UseProgram(prog)
	p.uTex = gl.GetUniformLocation(prog, gl.Str("uTex\x00"))
	gl.Uniform1i(p.uTex, 0)

	gl.GenTextures(1, &p.tex)
	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.BindVertexArray(0)
	return p, nil
}

func (p *Presenter) Destroy() {
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
	}
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
	}
	if p.prog != 0 {
		gl.DeleteProgram(p.prog)
	}
	if p.tex != 0 {
		gl.DeleteTextures(1, &p.tex)
	}
}

// Draw uploads the surface pixels and blits them to the framebuffer.
func (p *Presenter) Draw(s *render.Surface, fbW, fbH int) {
	gl.Viewport(0, 0, int32(fbW), int32(fbH))

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	if s.W != p.texW || s.H != p.texH {
		gl.TexImage2D(
			gl.TEXTURE_2D, 0, gl.RGBA8,
			int32(s.W), int32(s.H), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(s.Pix),
		)
		p.texW = s.W
		p.texH = s.H
	} else {
		gl.TexSubImage2D(
			gl.TEXTURE_2D, 0, 0, 0,
			int32(s.W), int32(s.H),
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(s.Pix),
		)
	}

	gl.UseProgram(p.prog)
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}
