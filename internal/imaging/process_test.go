package imaging

import (
	"image/color"
	"testing"
)

func defaultOptions() ProcessOptions {
	return ProcessOptions{
		AlphaClipThreshold:    0.5,
		EdgePadding:           true,
		EdgePaddingIterations: 2,
	}
}

func TestClipAlphaBinary(t *testing.T) {
	img := New(2, 1)
	img.Set(0, 0, color.RGBA{200, 100, 50, 130})
	img.Set(1, 0, color.RGBA{200, 100, 50, 120})

	clipAlpha(img, 0.5)

	if got := img.At(0, 0).A; got != 255 {
		t.Errorf("alpha above threshold = %d, want 255", got)
	}
	if got := img.At(1, 0).A; got != 0 {
		t.Errorf("alpha below threshold = %d, want 0", got)
	}
}

func TestClipAlphaIdempotent(t *testing.T) {
	img := New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			a := uint8(0)
			if (x+y)%2 == 0 {
				a = 255
			}
			img.Set(x, y, color.RGBA{10, 20, 30, a})
		}
	}

	before := img.Clone()
	clipAlpha(img, 0.5)

	for i := range img.Pix {
		if img.Pix[i] != before.Pix[i] {
			t.Fatalf("clipping an already-clipped image changed pixel byte %d", i)
		}
	}
}

func TestEdgePaddingDisabledLeavesColors(t *testing.T) {
	img := New(3, 3)
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})

	if err := Process(img, nil, ProcessOptions{AlphaClipThreshold: 0.5, EdgePadding: false}); err != nil {
		t.Fatal(err)
	}

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			c := img.At(x, y)
			if x == 1 && y == 1 {
				continue
			}
			if c.R != 0 || c.G != 0 || c.B != 0 {
				t.Errorf("pixel (%d,%d) colored %v with padding disabled", x, y, c)
			}
		}
	}
}

// bleed runs k padding iterations with a fresh fill mask, the way Process
// drives bleedEdges.
func bleed(img *Image, k int) {
	filled := make([]bool, img.Width*img.Height)
	for p := range filled {
		filled[p] = img.Pix[p*4+3] >= opaque
	}
	for i := 0; i < k; i++ {
		bleedEdges(img, filled)
	}
}

func TestEdgePaddingBleedsOneRingPerIteration(t *testing.T) {
	// A single opaque pixel in the middle of a 7x7 image. After k
	// iterations, exactly the pixels within Chebyshev distance k should
	// have picked up its color: bled pixels stay transparent but still
	// feed the next ring.
	for k := 1; k <= 3; k++ {
		img := New(7, 7)
		img.Set(3, 3, color.RGBA{200, 40, 10, 255})

		bleed(img, k)

		for y := 0; y < 7; y++ {
			for x := 0; x < 7; x++ {
				dx, dy := x-3, y-3
				if dx < 0 {
					dx = -dx
				}
				if dy < 0 {
					dy = -dy
				}
				dist := dx
				if dy > dist {
					dist = dy
				}

				c := img.At(x, y)
				colored := c.R != 0 || c.G != 0 || c.B != 0
				if dist <= k && !colored {
					t.Errorf("k=%d: pixel (%d,%d) at distance %d should be colored", k, x, y, dist)
				}
				if dist > k && colored {
					t.Errorf("k=%d: pixel (%d,%d) at distance %d should still be background", k, x, y, dist)
				}
				if dist > 0 && c.A != 0 {
					t.Errorf("k=%d: bleed changed alpha at (%d,%d)", k, x, y)
				}
			}
		}
	}
}

func TestProcessPaddingReachesIterationRadius(t *testing.T) {
	img := New(7, 7)
	img.Set(3, 3, color.RGBA{200, 40, 10, 255})

	opts := ProcessOptions{AlphaClipThreshold: 0.5, EdgePadding: true, EdgePaddingIterations: 2}
	if err := Process(img, nil, opts); err != nil {
		t.Fatal(err)
	}

	c := img.At(1, 3)
	if c.R == 0 && c.G == 0 && c.B == 0 {
		t.Error("pixel two rings out stayed background after two iterations")
	}
	if c.A != 0 {
		t.Errorf("bled pixel alpha = %d, want 0", c.A)
	}
}

func TestEdgePaddingAveragesNeighbors(t *testing.T) {
	img := New(3, 1)
	img.Set(0, 0, color.RGBA{100, 0, 0, 255})
	img.Set(2, 0, color.RGBA{200, 0, 0, 255})

	bleed(img, 1)

	if got := img.At(1, 0).R; got != 150 {
		t.Errorf("bled color R = %d, want 150 (average of 100 and 200)", got)
	}
}

func TestNormalReconciliation(t *testing.T) {
	albedo := New(2, 1)
	albedo.Set(0, 0, color.RGBA{255, 255, 255, 255})
	albedo.Set(1, 0, color.RGBA{0, 0, 0, 10})

	normal := New(2, 1)
	normal.Set(0, 0, color.RGBA{90, 140, 230, 40})
	normal.Set(1, 0, color.RGBA{90, 140, 230, 255})

	if err := Process(albedo, normal, defaultOptions()); err != nil {
		t.Fatal(err)
	}

	// Opaque albedo keeps the captured normal color with full alpha.
	if got, want := normal.At(0, 0), (color.RGBA{90, 140, 230, 255}); got != want {
		t.Errorf("opaque normal = %v, want %v", got, want)
	}
	// Transparent albedo gets the flat neutral normal.
	if got, want := normal.At(1, 0), (color.RGBA{128, 128, 255, 0}); got != want {
		t.Errorf("transparent normal = %v, want %v", got, want)
	}
}

func TestProcessNilAndEmptyImages(t *testing.T) {
	if err := Process(nil, nil, defaultOptions()); err != nil {
		t.Errorf("nil albedo should be a no-op, got %v", err)
	}
	if err := Process(New(0, 0), nil, defaultOptions()); err != nil {
		t.Errorf("zero-sized albedo should be a no-op, got %v", err)
	}

	albedo := New(2, 2)
	if err := Process(albedo, New(3, 3), defaultOptions()); err == nil {
		t.Error("expected error for mismatched normal dimensions")
	}
}

func TestDownsample(t *testing.T) {
	src := New(8, 4)
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 200
		src.Pix[i+3] = 255
	}

	dst := Downsample(src, 2)
	if dst.Width != 4 || dst.Height != 2 {
		t.Fatalf("Downsample size = %dx%d, want 4x2", dst.Width, dst.Height)
	}
	if c := dst.At(1, 1); c.R != 200 || c.A != 255 {
		t.Errorf("uniform image should stay uniform after downsample, got %v", c)
	}

	if got := Downsample(src, 1); got != src {
		t.Error("factor 1 should return the source image unchanged")
	}
}

func TestDownsampleBoxAverage(t *testing.T) {
	src := New(2, 2)
	for i, r := range []uint8{10, 20, 30, 40} {
		src.Pix[i*4] = r
	}
	src.Pix[3] = 255
	src.Pix[7] = 255

	dst := Downsample(src, 2)
	if c := dst.At(0, 0); c.R != 25 {
		t.Errorf("block mean R = %d, want 25", c.R)
	}
	if c := dst.At(0, 0); c.A != 128 {
		t.Errorf("block mean A = %d, want 128", c.A)
	}

	// Factor 4: every source pixel weighs the same, so a single bright
	// corner contributes exactly 1/16.
	src = New(4, 4)
	src.Pix[0] = 255
	dst = Downsample(src, 4)
	if c := dst.At(0, 0); c.R != 16 {
		t.Errorf("corner contribution R = %d, want 16", c.R)
	}
}
