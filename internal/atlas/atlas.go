// Package atlas packs processed snapshots into the impostor texture atlas
// and carries the per-view bookkeeping the mesh builder needs.
package atlas

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/impostor/internal/imaging"
	"github.com/Faultbox/impostor/internal/view"
)

var (
	// ErrNoAtlas is returned when the packed atlas would have zero area.
	// The individual snapshots are preserved on the texture set as a
	// fallback artifact; callers must handle that degraded state
	// explicitly instead of treating the set as complete.
	ErrNoAtlas = errors.New("atlas: no atlas produced")

	// ErrMixedHeights is returned when the input snapshots do not share
	// a single row height.
	ErrMixedHeights = errors.New("atlas: snapshot heights differ")
)

// PlacementRect locates one packed snapshot in atlas pixel space.
type PlacementRect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// TextureSet aggregates everything one generation run captured: the packed
// atlases, the placement of every snapshot, and the per-view metadata the
// mesh builder consumes. Rects, Directions and Sizes are index-aligned with
// capture order: radial views in [0, Views), top-down (if captured) at
// index Views.
type TextureSet struct {
	Albedo *imaging.Image
	Normal *imaging.Image

	Rects      []PlacementRect
	Directions []mgl32.Vec3
	Sizes      []view.Size

	// Views is the radial view count.
	Views int

	// Snapshots holds the pre-packed per-view images when packing failed
	// with ErrNoAtlas. Empty on success.
	Snapshots []*imaging.Image
}

// Pack concatenates snapshots into a single-row atlas: left to right in
// input order, no rotation, no reordering. The atlas width is the sum of
// the snapshot widths and every placement rect spans the full shared
// height, so the mesh builder's UV remap stays a closed-form offset/scale
// and the rect index doubles as the view index.
//
// The normal slice may be nil (normal capture skipped) but must otherwise
// be index-aligned with albedo.
func Pack(albedo, normal []*imaging.Image) (packedAlbedo, packedNormal *imaging.Image, rects []PlacementRect, err error) {
	if len(albedo) == 0 {
		return nil, nil, nil, ErrNoAtlas
	}
	if normal != nil && len(normal) != len(albedo) {
		return nil, nil, nil, fmt.Errorf("atlas: %d normal snapshots for %d albedo snapshots", len(normal), len(albedo))
	}

	height := albedo[0].Height
	totalWidth := 0
	for i, img := range albedo {
		if img.Height != height {
			return nil, nil, nil, fmt.Errorf("%w: snapshot %d is %dpx tall, want %dpx", ErrMixedHeights, i, img.Height, height)
		}
		totalWidth += img.Width
	}
	if totalWidth <= 0 || height <= 0 {
		return nil, nil, nil, fmt.Errorf("%w: %dx%d", ErrNoAtlas, totalWidth, height)
	}

	packedAlbedo = imaging.New(totalWidth, height)
	if normal != nil {
		packedNormal = imaging.New(totalWidth, height)
	}

	x := 0
	for i, img := range albedo {
		rects = append(rects, PlacementRect{X: x, Y: 0, Width: img.Width, Height: height})
		blit(packedAlbedo, img, x)
		if packedNormal != nil {
			blit(packedNormal, normal[i], x)
		}
		x += img.Width
	}

	return packedAlbedo, packedNormal, rects, nil
}

// blit copies src into dst at column x. A nil src leaves the region
// transparent.
func blit(dst, src *imaging.Image, x int) {
	if src.Empty() {
		return
	}
	for y := 0; y < src.Height; y++ {
		srcRow := src.Pix[y*src.Width*4 : (y+1)*src.Width*4]
		dstOff := (y*dst.Width + x) * 4
		copy(dst.Pix[dstOff:dstOff+len(srcRow)], srcRow)
	}
}
