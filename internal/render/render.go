// Package render provides the OpenGL-backed snapshot renderer: a hidden
// SDL2 window with an offscreen framebuffer that captures the loaded model
// from arbitrary view specs with a transparent clear color.
//
// This is the collaborator side of the pipeline; it contains no impostor
// logic, only scene plumbing. It requires a GPU context and is therefore
// not covered by unit tests.
package render

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/impostor/internal/capture"
	"github.com/Faultbox/impostor/internal/imaging"
	"github.com/Faultbox/impostor/internal/logger"
	"github.com/Faultbox/impostor/internal/view"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Renderer implements capture.Renderer on top of a hidden SDL2/OpenGL
// context. Create one per process; captures run strictly sequentially.
type Renderer struct {
	sdlWindow *sdl.Window
	glContext sdl.GLContext

	albedoProgram uint32
	normalProgram uint32

	model *modelBuffers
}

// New creates the hidden window, the GL context and the capture shader
// programs.
func New() (*Renderer, error) {
	r := &Renderer{}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// OpenGL 4.1 Core Profile (max supported on macOS)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	var err error
	r.sdlWindow, err = sdl.CreateWindow(
		"impostor capture",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		64, 64,
		sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	r.glContext, err = r.sdlWindow.GLCreateContext()
	if err != nil {
		r.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if err := gl.Init(); err != nil {
		r.Close()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	r.albedoProgram, err = compileProgram(captureVertexShader, albedoFragmentShader)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("albedo program: %w", err)
	}
	r.normalProgram, err = compileProgram(captureVertexShader, normalFragmentShader)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("normal program: %w", err)
	}

	logger.Info("capture renderer initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return r, nil
}

// SetModel uploads the model to capture. Replaces any previous model.
func (r *Renderer) SetModel(m *Model) error {
	if m == nil || len(m.Positions) == 0 || len(m.Indices) == 0 {
		return fmt.Errorf("render: model has no geometry")
	}
	if r.model != nil {
		r.model.destroy()
		r.model = nil
	}

	buffers, err := uploadModel(m)
	if err != nil {
		return err
	}
	r.model = buffers

	logger.Debug("model uploaded",
		zap.Int("vertices", len(m.Positions)),
		zap.Int("triangles", len(m.Indices)/3),
	)
	return nil
}

// Capture implements capture.Renderer: it renders the loaded model for one
// view spec at supersampled resolution and returns the downsampled frame.
func (r *Renderer) Capture(spec view.Spec, targetHeight, supersampling int, ch capture.Channel) (*imaging.Image, error) {
	if r.model == nil {
		return nil, fmt.Errorf("render: no model uploaded")
	}
	if targetHeight < 1 || supersampling < 1 {
		return nil, fmt.Errorf("render: invalid resolution %d x%d", targetHeight, supersampling)
	}

	aspect := spec.OrthoWidth / spec.OrthoHeight
	width := int(float32(targetHeight)*aspect + 0.5)
	if width < 1 {
		width = 1
	}
	ssWidth := int32(width * supersampling)
	ssHeight := int32(targetHeight * supersampling)

	// Record the GL state we are about to clobber; restored on every
	// exit path.
	session := beginSession()
	defer session.restore()

	target, err := newTarget(ssWidth, ssHeight)
	if err != nil {
		return nil, err
	}
	defer target.destroy()

	target.bind()

	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	program := r.albedoProgram
	if ch == capture.ChannelNormal {
		program = r.normalProgram
	}
	gl.UseProgram(program)

	eye := spec.Center.Add(spec.Direction.Mul(spec.Distance))
	viewMat := mgl32.LookAtV(eye, spec.Center, spec.Up)
	projMat := mgl32.Ortho(
		-spec.OrthoWidth/2, spec.OrthoWidth/2,
		-spec.OrthoHeight/2, spec.OrthoHeight/2,
		spec.NearClip, spec.FarClip,
	)
	mvp := projMat.Mul4(viewMat)

	gl.UniformMatrix4fv(gl.GetUniformLocation(program, gl.Str("uMVP\x00")), 1, false, &mvp[0])
	gl.UniformMatrix4fv(gl.GetUniformLocation(program, gl.Str("uView\x00")), 1, false, &viewMat[0])

	r.model.draw(program)

	pixels, err := target.readPixels()
	if err != nil {
		return nil, err
	}
	return imaging.Downsample(pixels, supersampling), nil
}

// Close releases all GL resources, the context and the window.
func (r *Renderer) Close() {
	if r.model != nil {
		r.model.destroy()
		r.model = nil
	}
	if r.albedoProgram != 0 {
		gl.DeleteProgram(r.albedoProgram)
	}
	if r.normalProgram != 0 {
		gl.DeleteProgram(r.normalProgram)
	}
	if r.glContext != nil {
		sdl.GLDeleteContext(r.glContext)
	}
	if r.sdlWindow != nil {
		r.sdlWindow.Destroy()
	}
	sdl.Quit()
}
