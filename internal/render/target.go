package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/impostor/internal/imaging"
)

// target is an offscreen framebuffer with an RGBA8 color texture and a
// depth renderbuffer. One is created per capture and destroyed after the
// pixels are read back.
type target struct {
	fbo    uint32
	color  uint32
	depth  uint32
	width  int32
	height int32
}

func newTarget(width, height int32) (*target, error) {
	t := &target{width: width, height: height}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.GenTextures(1, &t.color)
	gl.BindTexture(gl.TEXTURE_2D, t.color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.color, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenRenderbuffers(1, &t.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return nil, fmt.Errorf("render: framebuffer incomplete (status 0x%X)", status)
	}
	return t, nil
}

func (t *target) bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, t.width, t.height)
}

// readPixels reads the color attachment back and flips it vertically,
// since GL rows start at the bottom.
func (t *target) readPixels() (*imaging.Image, error) {
	width := int(t.width)
	height := int(t.height)
	raw := make([]uint8, width*height*4)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	gl.ReadPixels(0, 0, t.width, t.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(raw))

	img := imaging.New(width, height)
	rowLen := width * 4
	for y := 0; y < height; y++ {
		src := raw[(height-1-y)*rowLen : (height-y)*rowLen]
		copy(img.Pix[y*rowLen:(y+1)*rowLen], src)
	}
	return img, nil
}

func (t *target) destroy() {
	if t.depth != 0 {
		gl.DeleteRenderbuffers(1, &t.depth)
	}
	if t.color != 0 {
		gl.DeleteTextures(1, &t.color)
	}
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
	}
}
