// Package capture sequences the impostor snapshot pipeline: view planning,
// rendering, post-processing and atlas packing, one view at a time.
package capture

import (
	"github.com/Faultbox/impostor/internal/imaging"
	"github.com/Faultbox/impostor/internal/view"
)

// Channel selects the material override for one render pass.
type Channel int

const (
	// ChannelAlbedo renders the object's surface color.
	ChannelAlbedo Channel = iota

	// ChannelNormal renders view-space normals encoded as color.
	ChannelNormal
)

func (c Channel) String() string {
	switch c {
	case ChannelAlbedo:
		return "albedo"
	case ChannelNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// Renderer produces one snapshot per call. Implementations must clear to a
// fully transparent color, render at targetHeight x (targetHeight*aspect)
// scaled by the supersampling factor, downsample back to the nominal
// resolution, and fail explicitly rather than return a blank frame when the
// scene setup is invalid.
//
// The pipeline calls Capture strictly sequentially; implementations may
// reuse scene state between calls but must not assume concurrent use.
type Renderer interface {
	Capture(spec view.Spec, targetHeight, supersampling int, ch Channel) (*imaging.Image, error)
}
