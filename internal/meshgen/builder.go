package meshgen

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/impostor/internal/atlas"
)

// planeOffsetStep is the per-view offset along each plane's facing
// direction. Scaling with the view index keeps adjacent planes' shared
// edges from z-fighting; a constant offset would leave later planes
// coplanar again.
const planeOffsetStep = 0.001

var (
	// ErrIncompleteSet is returned when the texture set has no packed
	// atlas or fewer placement rects than radial views (for example the
	// degraded snapshots-only state after a packing failure).
	ErrIncompleteSet = errors.New("meshgen: texture set has no usable atlas")

	// ErrMissingTopDownRect is returned when horizontal cross-sections
	// are requested but the set has no top-down placement rect.
	ErrMissingTopDownRect = errors.New("meshgen: cross-sections require a top-down placement rect")
)

// Profile selects the billboard plane shape.
type Profile int

const (
	// ProfileQuad emits a plain rectangle per view: 4 vertices, 2 triangles.
	ProfileQuad Profile = iota

	// ProfileOctagon emits an 8-vertex silhouette per view that tapers
	// toward the base and the top: 6 triangles.
	ProfileOctagon
)

// OctagonParams shape the octagon profile. All fractions are clamped to
// [0,1].
type OctagonParams struct {
	// BottomWidthFrac scales the base edge relative to the full width.
	BottomWidthFrac float32

	// TopWidthFrac scales the top edge relative to the full width.
	TopWidthFrac float32

	// ShoulderCenterFrac is the vertical center of the full-width column.
	ShoulderCenterFrac float32

	// ShoulderHeightFrac is the vertical extent of the full-width column.
	ShoulderHeightFrac float32
}

// DefaultOctagonParams approximates a tree-like silhouette.
func DefaultOctagonParams() OctagonParams {
	return OctagonParams{
		BottomWidthFrac:    0.25,
		TopWidthFrac:       0.25,
		ShoulderCenterFrac: 0.5,
		ShoulderHeightFrac: 0.4,
	}
}

// CrossSection describes one horizontal quad cutting through the billboard
// ring, textured with the top-down capture.
type CrossSection struct {
	// HeightFraction positions the quad along the mesh height, in [0,1].
	HeightFraction float32

	// SizeMultiplier scales the quad relative to the average radial
	// plane width.
	SizeMultiplier float32

	// RotationDegrees spins the quad about the vertical axis.
	RotationDegrees float32
}

// Options configures mesh construction.
type Options struct {
	Profile Profile
	Octagon OctagonParams

	// DoubleSided emits explicit back-facing planes (textured with the
	// opposite view) instead of relying on a two-sided shader.
	DoubleSided bool

	// VerticalOffset shifts the whole billboard along the vertical axis.
	VerticalOffset float32

	CrossSections []CrossSection
}

// Build constructs the billboard mesh for a finished texture set.
func Build(set *atlas.TextureSet, opts Options) (*Mesh, error) {
	if set == nil || set.Albedo.Empty() || len(set.Rects) < set.Views || set.Views < 1 {
		return nil, ErrIncompleteSet
	}
	if len(set.Sizes) < set.Views || len(set.Directions) < set.Views {
		return nil, fmt.Errorf("%w: %d sizes and %d directions for %d views",
			ErrIncompleteSet, len(set.Sizes), len(set.Directions), set.Views)
	}
	if len(opts.CrossSections) > 0 && len(set.Rects) < set.Views+1 {
		return nil, fmt.Errorf("%w: have %d rects for %d views", ErrMissingTopDownRect, len(set.Rects), set.Views)
	}

	atlasWidth := float32(set.Albedo.Width)
	height := float32(0)
	avgWidth := float32(0)
	for i := 0; i < set.Views; i++ {
		if set.Sizes[i].Height > height {
			height = set.Sizes[i].Height
		}
		avgWidth += set.Sizes[i].Width
	}
	avgWidth /= float32(set.Views)

	mesh := &Mesh{}
	b := &builder{
		mesh:       mesh,
		set:        set,
		opts:       opts,
		atlasWidth: atlasWidth,
		height:     height,
		yBottom:    -height/2 + opts.VerticalOffset,
	}

	for i := 0; i < set.Views; i++ {
		b.addRadialPlane(i, false)
	}
	// Explicit back faces need an opposite view to sample; with a single
	// view there is none, so back-face emission is skipped.
	if opts.DoubleSided && set.Views >= 2 {
		for i := 0; i < set.Views; i++ {
			b.addRadialPlane(i, true)
		}
	}

	for _, cs := range opts.CrossSections {
		b.addCrossSection(cs, avgWidth)
	}

	mesh.finalize()
	return mesh, nil
}

type builder struct {
	mesh       *Mesh
	set        *atlas.TextureSet
	opts       Options
	atlasWidth float32
	height     float32
	yBottom    float32
}

// profileRow is one horizontal edge of a radial plane: a vertex pair at a
// vertical fraction with a half-width.
type profileRow struct {
	vFrac     float32
	halfWidth float32
}

// addRadialPlane emits the billboard plane for view i. When back is set,
// the plane samples the opposite view's atlas rect with mirrored U, faces
// inward, and winds in reverse.
func (b *builder) addRadialPlane(i int, back bool) {
	dir := b.set.Directions[i]
	half := b.set.Sizes[i].Width / 2

	rows := b.profileRows(half)

	texIndex := i
	if back {
		texIndex = (i + b.set.Views/2) % b.set.Views
	}
	rect := b.set.Rects[texIndex]

	// Look-rotation toward the view direction, flipped 180 degrees about
	// the up axis so the textured face points outward. For the radial
	// ring this reduces to a yaw by the view angle.
	yaw := math32.Atan2(dir.X(), dir.Z())
	rot := mgl32.HomogRotate3DY(yaw)

	offset := float32(i) * planeOffsetStep
	if back {
		offset -= planeOffsetStep
	}
	shift := dir.Mul(offset)

	normal := dir
	if back {
		normal = dir.Mul(-1)
	}

	base := uint32(len(b.mesh.Vertices))
	for _, row := range rows {
		y := b.yBottom + row.vFrac*b.height
		for _, side := range []float32{-1, 1} {
			local := mgl32.Vec3{side * row.halfWidth, y, 0}
			pos := mgl32.TransformCoordinate(local, rot).Add(shift)

			u := 0.5 + side*row.halfWidth/(2*half)
			if back {
				u = 1 - u
			}
			b.mesh.addVertex(pos, normal, b.atlasUV(rect, u, row.vFrac))
		}
	}

	for r := 0; r < len(rows)-1; r++ {
		l0 := base + uint32(r*2)
		r0 := l0 + 1
		l1 := l0 + 2
		r1 := l0 + 3
		if back {
			b.mesh.addTriangle(l0, r1, r0)
			b.mesh.addTriangle(l0, l1, r1)
		} else {
			b.mesh.addTriangle(l0, r0, r1)
			b.mesh.addTriangle(l0, r1, l1)
		}
	}
}

// profileRows returns the vertex rows of the active profile, bottom to top.
func (b *builder) profileRows(half float32) []profileRow {
	if b.opts.Profile != ProfileOctagon {
		return []profileRow{
			{vFrac: 0, halfWidth: half},
			{vFrac: 1, halfWidth: half},
		}
	}

	p := b.opts.Octagon
	bottom := clamp01(p.BottomWidthFrac)
	top := clamp01(p.TopWidthFrac)
	center := clamp01(p.ShoulderCenterFrac)

	shoulderLow := clamp01(center - p.ShoulderHeightFrac/2)
	shoulderHigh := clamp01(center + p.ShoulderHeightFrac/2)
	if shoulderLow > shoulderHigh {
		mid := (shoulderLow + shoulderHigh) / 2
		shoulderLow = mid
		shoulderHigh = mid
	}

	return []profileRow{
		{vFrac: 0, halfWidth: half * bottom},
		{vFrac: shoulderLow, halfWidth: half},
		{vFrac: shoulderHigh, halfWidth: half},
		{vFrac: 1, halfWidth: half * top},
	}
}

// addCrossSection emits one horizontal quad (plus its mirror in
// double-sided mode) textured with the top-down capture.
func (b *builder) addCrossSection(cs CrossSection, avgWidth float32) {
	rect := b.set.Rects[b.set.Views]
	half := cs.SizeMultiplier * avgWidth / 2
	y := b.yBottom + cs.HeightFraction*b.height
	rot := mgl32.HomogRotate3DY(mgl32.DegToRad(cs.RotationDegrees))

	corners := [4]mgl32.Vec3{
		{-half, y, -half},
		{half, y, -half},
		{half, y, half},
		{-half, y, half},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	up := mgl32.Vec3{0, 1, 0}
	base := uint32(len(b.mesh.Vertices))
	for c := 0; c < 4; c++ {
		pos := mgl32.TransformCoordinate(corners[c], rot)
		b.mesh.addVertex(pos, up, b.atlasUV(rect, uvs[c].X(), uvs[c].Y()))
	}
	b.mesh.addTriangle(base, base+2, base+1)
	b.mesh.addTriangle(base, base+3, base+2)

	if b.opts.DoubleSided {
		down := mgl32.Vec3{0, -1, 0}
		mirror := uint32(len(b.mesh.Vertices))
		for c := 0; c < 4; c++ {
			pos := mgl32.TransformCoordinate(corners[c], rot)
			b.mesh.addVertex(pos, down, b.atlasUV(rect, uvs[c].X(), uvs[c].Y()))
		}
		b.mesh.addTriangle(mirror, mirror+1, mirror+2)
		b.mesh.addTriangle(mirror, mirror+2, mirror+3)
	}
}

// atlasUV remaps a plane-local UV into the plane's placement rect. The
// atlas is a single row, so V passes through unchanged.
func (b *builder) atlasUV(rect atlas.PlacementRect, u, v float32) mgl32.Vec2 {
	return mgl32.Vec2{
		(float32(rect.X) + u*float32(rect.Width)) / b.atlasWidth,
		v,
	}
}

func clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}
