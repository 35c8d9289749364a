package imaging

import "fmt"

// Neutral tangent-space normal written into texels that are transparent in
// the albedo image, so mip filtering never pulls in garbage directions.
const (
	flatNormalR = 128
	flatNormalG = 128
	flatNormalB = 255
)

// opaque is the post-clip alpha midpoint: clipped alpha is exactly 0 or 255,
// so any value at or above 128 marks an opaque texel.
const opaque = 128

// ProcessOptions controls per-snapshot post-processing.
type ProcessOptions struct {
	// AlphaClipThreshold is the cutoff in (0,1); alpha at or above it
	// becomes fully opaque, everything below fully transparent.
	AlphaClipThreshold float32

	// EdgePadding bleeds opaque colors into transparent neighbors so
	// texture filtering at the silhouette does not sample the clear color.
	EdgePadding bool

	// EdgePaddingIterations is the bleed radius in pixels, [1,10].
	EdgePaddingIterations int
}

// Process applies alpha clipping, optional edge padding, and normal/alpha
// reconciliation to one captured snapshot. The albedo image is mutated in
// place; the normal image (if any) is forced to agree with the albedo's
// post-clip alpha texel for texel. Nil or zero-sized images are no-ops:
// normal capture is optional and callers may skip it entirely.
func Process(albedo, normal *Image, opts ProcessOptions) error {
	if albedo.Empty() {
		return nil
	}
	if !normal.Empty() && (normal.Width != albedo.Width || normal.Height != albedo.Height) {
		return fmt.Errorf("normal image %dx%d does not match albedo %dx%d",
			normal.Width, normal.Height, albedo.Width, albedo.Height)
	}

	clipAlpha(albedo, opts.AlphaClipThreshold)

	if opts.EdgePadding {
		// Bled pixels keep alpha 0, so the expanding frontier is tracked
		// in a mask rather than read back from the alpha channel.
		filled := make([]bool, albedo.Width*albedo.Height)
		for p := range filled {
			filled[p] = albedo.Pix[p*4+3] >= opaque
		}
		for i := 0; i < opts.EdgePaddingIterations; i++ {
			bleedEdges(albedo, filled)
		}
	}

	if !normal.Empty() {
		reconcileNormal(albedo, normal)
	}
	return nil
}

// clipAlpha hard-partitions alpha: >= threshold becomes 255, else 0.
// A binary partition rather than a curve, so semi-transparent fringes
// cannot accumulate across mip levels.
func clipAlpha(img *Image, threshold float32) {
	cut := threshold * 255
	for i := 3; i < len(img.Pix); i += 4 {
		if float32(img.Pix[i]) >= cut {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = 0
		}
	}
}

// bleedEdges runs one dilation step: every unfilled pixel that touches at
// least one filled 8-neighbor takes the average color of those neighbors.
// Alpha is left untouched, only color bleeds. filled marks opaque pixels
// plus everything colored by earlier steps; pixels colored this step join
// it, so successive calls advance the frontier by one ring each even though
// bled pixels stay transparent. Reads come from a snapshot of the previous
// state so a step never feeds on its own output.
func bleedEdges(img *Image, filled []bool) {
	prev := img.Clone()
	prevFilled := make([]bool, len(filled))
	copy(prevFilled, filled)

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := y*img.Width + x
			if prevFilled[p] {
				continue
			}

			var r, g, b, n int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= prev.Width || ny >= prev.Height {
						continue
					}
					if !prevFilled[ny*prev.Width+nx] {
						continue
					}
					j := (ny*prev.Width + nx) * 4
					r += int(prev.Pix[j])
					g += int(prev.Pix[j+1])
					b += int(prev.Pix[j+2])
					n++
				}
			}
			if n == 0 {
				continue
			}
			i := p * 4
			img.Pix[i] = uint8(r / n)
			img.Pix[i+1] = uint8(g / n)
			img.Pix[i+2] = uint8(b / n)
			filled[p] = true
		}
	}
}

// reconcileNormal forces the normal image's alpha to match the albedo's
// post-clip alpha, writing a flat neutral normal into transparent texels so
// both atlases agree on which texels are real.
func reconcileNormal(albedo, normal *Image) {
	for i := 0; i < len(albedo.Pix); i += 4 {
		if albedo.Pix[i+3] >= opaque {
			normal.Pix[i+3] = 255
			continue
		}
		normal.Pix[i] = flatNormalR
		normal.Pix[i+1] = flatNormalG
		normal.Pix[i+2] = flatNormalB
		normal.Pix[i+3] = 0
	}
}
