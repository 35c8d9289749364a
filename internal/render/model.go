package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/impostor/internal/imaging"
)

// Model is the CPU-side geometry handed to the renderer. Normals and UVs
// are optional; missing attributes fall back to +Z normals and zero UVs.
// Texture, when set, is sampled for the albedo channel; otherwise the
// model renders opaque white.
type Model struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
	Texture   *imaging.Image
}

// modelBuffers holds the GL-side copy of a Model.
type modelBuffers struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	texture    uint32
	indexCount int32
}

const vertexStride = 8 // position(3) + normal(3) + uv(2)

func uploadModel(m *Model) (*modelBuffers, error) {
	interleaved := make([]float32, 0, len(m.Positions)*vertexStride)
	for i, pos := range m.Positions {
		normal := mgl32.Vec3{0, 0, 1}
		if i < len(m.Normals) {
			normal = m.Normals[i]
		}
		uv := mgl32.Vec2{}
		if i < len(m.UVs) {
			uv = m.UVs[i]
		}
		interleaved = append(interleaved,
			pos.X(), pos.Y(), pos.Z(),
			normal.X(), normal.Y(), normal.Z(),
			uv.X(), uv.Y(),
		)
	}

	b := &modelBuffers{indexCount: int32(len(m.Indices))}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(interleaved)*4, gl.Ptr(interleaved), gl.STATIC_DRAW)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	stride := int32(vertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)

	gl.BindVertexArray(0)

	if m.Texture != nil && !m.Texture.Empty() {
		tex, err := uploadTexture(m.Texture)
		if err != nil {
			b.destroy()
			return nil, err
		}
		b.texture = tex
	}
	return b, nil
}

func uploadTexture(img *imaging.Image) (uint32, error) {
	if img.Width < 1 || img.Height < 1 {
		return 0, fmt.Errorf("render: invalid texture size %dx%d", img.Width, img.Height)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(img.Width), int32(img.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex, nil
}

func (b *modelBuffers) draw(program uint32) {
	hasTexture := int32(0)
	if b.texture != 0 {
		hasTexture = 1
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, b.texture)
		gl.Uniform1i(gl.GetUniformLocation(program, gl.Str("uAlbedo\x00")), 0)
	}
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str("uHasAlbedo\x00")), hasTexture)

	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLES, b.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)

	if b.texture != 0 {
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
}

func (b *modelBuffers) destroy() {
	if b.texture != 0 {
		gl.DeleteTextures(1, &b.texture)
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
}
