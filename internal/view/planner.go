// Package view plans the camera poses and orthographic extents for each
// impostor snapshot: N radial views spun around the vertical axis plus an
// optional top-down view.
package view

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/impostor/pkg/geom"
)

// minViewSize floors projected extents so a flat object never produces a
// zero-area view.
const minViewSize = 0.01

var (
	// ErrInvalidBounds is returned when the object bounds are degenerate
	// or non-finite.
	ErrInvalidBounds = errors.New("view: invalid object bounds")

	// ErrDegenerateView is returned when a planned view collapses to a
	// non-positive size even after padding.
	ErrDegenerateView = errors.New("view: degenerate view size")
)

// Kind distinguishes the radial ring views from the single top-down view.
type Kind int

const (
	Radial Kind = iota
	TopDown
)

// Spec describes one planned capture. Immutable once planned; consumed by
// the renderer (camera setup) and the mesh builder (plane orientation).
type Spec struct {
	// Direction points from the object center toward the camera.
	Direction mgl32.Vec3
	Up        mgl32.Vec3

	// Full orthographic frustum size in world units, padding included.
	OrthoWidth  float32
	OrthoHeight float32

	NearClip float32
	FarClip  float32

	// Center and Distance give the camera pose: the camera sits at
	// Center + Direction*Distance looking back at Center.
	Center   mgl32.Vec3
	Distance float32

	Kind Kind
}

// Size is the unpadded world-space extent of the object as seen from one
// view. The mesh builder sizes each billboard plane from it.
type Size struct {
	Width  float32
	Height float32
}

// Params configures planning.
type Params struct {
	// Views is the requested radial view count, >= 1.
	Views int

	// FrontFaceOnly halves the captured radial count (rounding up, min 1)
	// for objects that will be drawn double-sided. Angles are still spaced
	// against the full requested count so the captured half keeps the
	// same spacing.
	FrontFaceOnly bool

	// IncludeTopDown appends one top-down view after the radial ring.
	IncludeTopDown bool

	// CaptureDistanceOffset pushes the camera out beyond the object's
	// largest half-extent. Must be >= 0.
	CaptureDistanceOffset float32

	// FramePadding grows the orthographic frame by a fraction in [0,0.3]
	// so the silhouette never touches the snapshot border.
	FramePadding float32
}

// Plan is the ordered capture schedule: radial views first, top-down last.
// Directions and Sizes are index-aligned with Specs.
type Plan struct {
	Specs      []Spec
	Directions []mgl32.Vec3
	Sizes      []Size

	// RadialViews is the number of radial entries; the top-down view, if
	// planned, is at index RadialViews.
	RadialViews int
	HasTopDown  bool
}

// worldUp and worldForward fix the planning frame. The first radial view
// looks along +Z.
var (
	worldUp      = mgl32.Vec3{0, 1, 0}
	worldForward = mgl32.Vec3{0, 0, 1}
)

// New builds the capture plan for an object's bounds.
func New(bounds geom.Bounds, p Params) (*Plan, error) {
	if p.Views < 1 {
		return nil, fmt.Errorf("view: requested %d views: %w", p.Views, ErrInvalidBounds)
	}
	if !bounds.IsValid() {
		return nil, fmt.Errorf("view: bounds %+v: %w", bounds, ErrInvalidBounds)
	}

	radial := p.Views
	if p.FrontFaceOnly {
		radial = (p.Views + 1) / 2
		if radial < 1 {
			radial = 1
		}
	}

	maxExtent := bounds.MaxExtent()
	camDistance := maxExtent + p.CaptureDistanceOffset

	plan := &Plan{
		RadialViews: radial,
		HasTopDown:  p.IncludeTopDown,
	}

	for i := 0; i < radial; i++ {
		// Angle is computed against the full requested count, not the
		// halved one, so front-only capture keeps the original spacing.
		angle := mgl32.DegToRad(float32(i) * 360 / float32(p.Views))
		dir := mgl32.Vec3{math32.Sin(angle), 0, math32.Cos(angle)}

		spec, size, err := planRadial(bounds, dir, camDistance, maxExtent, p.FramePadding)
		if err != nil {
			return nil, fmt.Errorf("view %d: %w", i, err)
		}
		plan.append(spec, size)
	}

	if p.IncludeTopDown {
		spec, size, err := planTopDown(bounds, camDistance, p.FramePadding)
		if err != nil {
			return nil, fmt.Errorf("top-down view: %w", err)
		}
		plan.append(spec, size)
	}

	return plan, nil
}

func (p *Plan) append(spec Spec, size Size) {
	p.Specs = append(p.Specs, spec)
	p.Directions = append(p.Directions, spec.Direction)
	p.Sizes = append(p.Sizes, size)
}

// planRadial projects the 8 box corners into the view's camera space to get
// a tight width/height for the orthographic frame.
func planRadial(bounds geom.Bounds, dir mgl32.Vec3, camDistance, maxExtent, padding float32) (Spec, Size, error) {
	eye := bounds.Center.Add(dir.Mul(camDistance))
	viewMat := mgl32.LookAtV(eye, bounds.Center, worldUp)

	minX := float32(math32.MaxFloat32)
	minY := float32(math32.MaxFloat32)
	maxX := float32(-math32.MaxFloat32)
	maxY := float32(-math32.MaxFloat32)
	for _, corner := range bounds.Corners() {
		local := viewMat.Mul4x1(corner.Vec4(1))
		if local.X() < minX {
			minX = local.X()
		}
		if local.X() > maxX {
			maxX = local.X()
		}
		if local.Y() < minY {
			minY = local.Y()
		}
		if local.Y() > maxY {
			maxY = local.Y()
		}
	}

	width := maxX - minX
	height := maxY - minY
	if width < minViewSize {
		width = minViewSize
	}
	if height < minViewSize {
		height = minViewSize
	}

	spec, err := frame(dir, worldUp, bounds.Center, camDistance, maxExtent, width, height, padding, Radial)
	if err != nil {
		return Spec{}, Size{}, err
	}
	return spec, Size{Width: width, Height: height}, nil
}

// planTopDown looks straight down the vertical axis. The view axis is
// world-aligned so the extents come directly from the box's X/Z dimensions
// instead of a corner re-projection. The up vector is pinned to world
// forward to decouple atlas roll from the lighting convention.
func planTopDown(bounds geom.Bounds, camDistance, padding float32) (Spec, Size, error) {
	width := bounds.Extents.X() * 2
	height := bounds.Extents.Z() * 2
	if width < minViewSize {
		width = minViewSize
	}
	if height < minViewSize {
		height = minViewSize
	}

	spec, err := frame(worldUp, worldForward, bounds.Center, camDistance, bounds.Extents.Y(), width, height, padding, TopDown)
	if err != nil {
		return Spec{}, Size{}, err
	}
	return spec, Size{Width: width, Height: height}, nil
}

// frame derives the padded orthographic frustum and clip planes for a view.
func frame(dir, up, center mgl32.Vec3, camDistance, halfDepth, width, height, padding float32, kind Kind) (Spec, error) {
	halfHeight := (height / 2) * (1 + padding)
	if halfHeight < minViewSize {
		halfHeight = minViewSize
	}
	aspect := width / height

	orthoHeight := halfHeight * 2
	orthoWidth := orthoHeight * aspect
	if !(orthoWidth > 0) || !(orthoHeight > 0) || math32.IsNaN(orthoWidth) {
		return Spec{}, fmt.Errorf("%w: %gx%g", ErrDegenerateView, orthoWidth, orthoHeight)
	}

	near := (camDistance - halfDepth) * 0.9
	if near < 0.01 {
		near = 0.01
	}
	far := (camDistance + halfDepth) * 1.1

	return Spec{
		Direction:   dir,
		Up:          up,
		OrthoWidth:  orthoWidth,
		OrthoHeight: orthoHeight,
		NearClip:    near,
		FarClip:     far,
		Center:      center,
		Distance:    camDistance,
		Kind:        kind,
	}, nil
}
