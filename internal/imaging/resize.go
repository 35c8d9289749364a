package imaging

// Downsample reduces a supersampled capture back to its nominal resolution
// by an integer factor, averaging each factor x factor block per channel.
// Factor 1 (or an empty image) returns the input unchanged.
func Downsample(src *Image, factor int) *Image {
	if src.Empty() || factor <= 1 {
		return src
	}

	w := src.Width / factor
	h := src.Height / factor
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := New(w, h)
	area := factor * factor
	half := area / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a int
			for dy := 0; dy < factor; dy++ {
				o := ((y*factor+dy)*src.Width + x*factor) * 4
				for dx := 0; dx < factor; dx++ {
					r += int(src.Pix[o])
					g += int(src.Pix[o+1])
					b += int(src.Pix[o+2])
					a += int(src.Pix[o+3])
					o += 4
				}
			}
			i := (y*w + x) * 4
			dst.Pix[i] = uint8((r + half) / area)
			dst.Pix[i+1] = uint8((g + half) / area)
			dst.Pix[i+2] = uint8((b + half) / area)
			dst.Pix[i+3] = uint8((a + half) / area)
		}
	}
	return dst
}
