// Package meshgen builds the impostor billboard mesh: one textured plane
// per radial view (quad or octagon profile), optional explicit back faces,
// and optional horizontal cross-section quads, all UV-mapped into the
// packed atlas.
package meshgen

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/impostor/pkg/geom"
)

// Mesh is the finished impostor geometry. Triangles index into the vertex
// arrays in groups of three.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Tangents  []mgl32.Vec4
	Triangles []uint32
	Bounds    geom.Bounds
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// addVertex appends one vertex with its normal and UV.
func (m *Mesh) addVertex(pos, normal mgl32.Vec3, uv mgl32.Vec2) uint32 {
	idx := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, pos)
	m.Normals = append(m.Normals, normal)
	m.UVs = append(m.UVs, uv)
	return idx
}

// addTriangle appends one triangle.
func (m *Mesh) addTriangle(a, b, c uint32) {
	m.Triangles = append(m.Triangles, a, b, c)
}

// finalize derives the bounding box and tangent basis after all planes
// have been emitted.
func (m *Mesh) finalize() {
	m.Bounds = geom.FromPoints(m.Vertices)
	m.Tangents = computeTangents(m.Vertices, m.Normals, m.UVs, m.Triangles)
}
