package render

import "github.com/go-gl/gl/v4.1-core/gl"

// session snapshots the GL state a capture mutates so the context is left
// the way it was found, even when the capture fails halfway.
type session struct {
	prevFBO        int32
	prevViewport   [4]int32
	prevClearColor [4]float32
	depthEnabled   bool
	blendEnabled   bool
}

func beginSession() *session {
	s := &session{}
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &s.prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &s.prevViewport[0])
	gl.GetFloatv(gl.COLOR_CLEAR_VALUE, &s.prevClearColor[0])
	s.depthEnabled = gl.IsEnabled(gl.DEPTH_TEST)
	s.blendEnabled = gl.IsEnabled(gl.BLEND)
	return s
}

func (s *session) restore() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(s.prevFBO))
	gl.Viewport(s.prevViewport[0], s.prevViewport[1], s.prevViewport[2], s.prevViewport[3])
	gl.ClearColor(s.prevClearColor[0], s.prevClearColor[1], s.prevClearColor[2], s.prevClearColor[3])
	setCapability(gl.DEPTH_TEST, s.depthEnabled)
	setCapability(gl.BLEND, s.blendEnabled)
	gl.UseProgram(0)
}

func setCapability(cap uint32, enabled bool) {
	if enabled {
		gl.Enable(cap)
	} else {
		gl.Disable(cap)
	}
}
