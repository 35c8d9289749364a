// Package geom provides axis-aligned bounding volume math for the
// impostor pipeline.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// minExtent floors degenerate boxes so projections never collapse to zero.
const minExtent = 0.01

// Bounds is an axis-aligned box described by its center and half-extents.
type Bounds struct {
	Center  mgl32.Vec3
	Extents mgl32.Vec3
}

// NewBounds returns a bounds from a center point and half-extents.
func NewBounds(center, extents mgl32.Vec3) Bounds {
	return Bounds{Center: center, Extents: extents}
}

// FromPoints computes the tightest bounds enclosing the given points.
// An empty slice yields a zero bounds at the origin.
func FromPoints(points []mgl32.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	min := points[0]
	max := points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}

	return Bounds{
		Center:  min.Add(max).Mul(0.5),
		Extents: max.Sub(min).Mul(0.5),
	}
}

// FromMinMax builds a bounds from the minimum and maximum corners.
func FromMinMax(min, max mgl32.Vec3) Bounds {
	return Bounds{
		Center:  min.Add(max).Mul(0.5),
		Extents: max.Sub(min).Mul(0.5),
	}
}

// Min returns the minimum corner of the box.
func (b Bounds) Min() mgl32.Vec3 {
	return b.Center.Sub(b.Extents)
}

// Max returns the maximum corner of the box.
func (b Bounds) Max() mgl32.Vec3 {
	return b.Center.Add(b.Extents)
}

// Corners returns the 8 corners of the box.
func (b Bounds) Corners() [8]mgl32.Vec3 {
	min := b.Min()
	max := b.Max()

	var corners [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		c := min
		if i&1 != 0 {
			c[0] = max[0]
		}
		if i&2 != 0 {
			c[1] = max[1]
		}
		if i&4 != 0 {
			c[2] = max[2]
		}
		corners[i] = c
	}
	return corners
}

// MaxExtent returns the largest half-extent, floored at 0.01 so callers
// never divide by a degenerate dimension.
func (b Bounds) MaxExtent() float32 {
	m := b.Extents[0]
	if b.Extents[1] > m {
		m = b.Extents[1]
	}
	if b.Extents[2] > m {
		m = b.Extents[2]
	}
	if m < minExtent {
		m = minExtent
	}
	return m
}

// IsValid reports whether all components are finite and the extents are
// non-negative.
func (b Bounds) IsValid() bool {
	for i := 0; i < 3; i++ {
		if math32.IsNaN(b.Center[i]) || math32.IsInf(b.Center[i], 0) {
			return false
		}
		if math32.IsNaN(b.Extents[i]) || math32.IsInf(b.Extents[i], 0) {
			return false
		}
		if b.Extents[i] < 0 {
			return false
		}
	}
	return true
}
