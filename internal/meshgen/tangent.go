package meshgen

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// computeTangents derives a per-vertex tangent basis for normal mapping:
// per-triangle tangents and bitangents from the position/UV gradients,
// accumulated per vertex, then Gram-Schmidt orthogonalized against the
// vertex normal. The w component stores the bitangent handedness.
func computeTangents(vertices, normals []mgl32.Vec3, uvs []mgl32.Vec2, triangles []uint32) []mgl32.Vec4 {
	tan := make([]mgl32.Vec3, len(vertices))
	bitan := make([]mgl32.Vec3, len(vertices))

	for t := 0; t+2 < len(triangles); t += 3 {
		i0, i1, i2 := triangles[t], triangles[t+1], triangles[t+2]

		e1 := vertices[i1].Sub(vertices[i0])
		e2 := vertices[i2].Sub(vertices[i0])
		duv1 := uvs[i1].Sub(uvs[i0])
		duv2 := uvs[i2].Sub(uvs[i0])

		det := duv1.X()*duv2.Y() - duv2.X()*duv1.Y()
		if math32.Abs(det) < 1e-8 {
			continue
		}
		r := 1 / det

		t3 := e1.Mul(duv2.Y()).Sub(e2.Mul(duv1.Y())).Mul(r)
		b3 := e2.Mul(duv1.X()).Sub(e1.Mul(duv2.X())).Mul(r)

		for _, i := range []uint32{i0, i1, i2} {
			tan[i] = tan[i].Add(t3)
			bitan[i] = bitan[i].Add(b3)
		}
	}

	out := make([]mgl32.Vec4, len(vertices))
	for i := range vertices {
		n := normals[i]
		t := tan[i]

		// Orthogonalize against the normal.
		t = t.Sub(n.Mul(n.Dot(t)))
		if t.Len() < 1e-8 {
			// Degenerate UVs; pick any tangent perpendicular to n.
			t = perpendicular(n)
		} else {
			t = t.Normalize()
		}

		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		out[i] = t.Vec4(w)
	}
	return out
}

// perpendicular returns an arbitrary unit vector perpendicular to n.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math32.Abs(n.X()) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return n.Cross(axis).Normalize()
}
