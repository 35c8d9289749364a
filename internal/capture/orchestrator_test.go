package capture

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/impostor/internal/imaging"
	"github.com/Faultbox/impostor/internal/logger"
	"github.com/Faultbox/impostor/internal/view"
	"github.com/Faultbox/impostor/pkg/geom"
)

func TestMain(m *testing.M) {
	// Tests run without console logging.
	if err := logger.InitWithFileConfig("error", logger.FileConfig{}, false); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeRenderer returns solid opaque frames sized from the view's aspect,
// recording every capture call in order.
type fakeRenderer struct {
	calls []Channel
	fail  bool
}

func (f *fakeRenderer) Capture(spec view.Spec, targetHeight, supersampling int, ch Channel) (*imaging.Image, error) {
	f.calls = append(f.calls, ch)
	if f.fail {
		return nil, fmt.Errorf("scene setup invalid")
	}

	aspect := spec.OrthoWidth / spec.OrthoHeight
	width := int(float32(targetHeight)*aspect + 0.5)
	if width < 1 {
		width = 1
	}

	img := imaging.New(width, targetHeight)
	for y := 0; y < targetHeight; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{180, 90, 45, 255})
		}
	}
	return img, nil
}

func unitCube() geom.Bounds {
	return geom.NewBounds(mgl32.Vec3{0, 0, 0.5}, mgl32.Vec3{0.5, 0.5, 0.5})
}

func defaultOptions() Options {
	return Options{
		Views:         4,
		AtlasHeight:   16,
		Supersampling: 1,
		Processing: imaging.ProcessOptions{
			AlphaClipThreshold:    0.5,
			EdgePadding:           true,
			EdgePaddingIterations: 2,
		},
	}
}

func TestRunPacksAllViews(t *testing.T) {
	r := &fakeRenderer{}
	set, err := NewOrchestrator(r, defaultOptions()).Run(context.Background(), unitCube())
	if err != nil {
		t.Fatal(err)
	}

	if set.Views != 4 {
		t.Errorf("Views = %d, want 4", set.Views)
	}
	if len(set.Rects) != 4 || len(set.Directions) != 4 || len(set.Sizes) != 4 {
		t.Fatalf("bookkeeping lengths = %d/%d/%d, want 4 each",
			len(set.Rects), len(set.Directions), len(set.Sizes))
	}

	// A unit cube seen axis-aligned is square, so each snapshot is
	// 16x16 and the atlas is their horizontal concatenation.
	wantWidth := 0
	for i, rect := range set.Rects {
		if rect.X != wantWidth {
			t.Errorf("rect %d x = %d, want %d", i, rect.X, wantWidth)
		}
		if rect.Height != 16 {
			t.Errorf("rect %d height = %d, want 16", i, rect.Height)
		}
		wantWidth += rect.Width
	}
	if set.Albedo.Width != wantWidth || set.Albedo.Height != 16 {
		t.Errorf("atlas = %dx%d, want %dx16", set.Albedo.Width, set.Albedo.Height, wantWidth)
	}
	if set.Normal != nil {
		t.Error("normal atlas produced without GenerateNormalMap")
	}
	if len(set.Snapshots) != 0 {
		t.Error("snapshots should be empty on success")
	}

	// One albedo capture per view, in order.
	if len(r.calls) != 4 {
		t.Fatalf("got %d capture calls, want 4", len(r.calls))
	}
	for i, ch := range r.calls {
		if ch != ChannelAlbedo {
			t.Errorf("call %d channel = %v, want albedo", i, ch)
		}
	}
}

func TestRunWithNormalMapAndTopDown(t *testing.T) {
	r := &fakeRenderer{}
	opts := defaultOptions()
	opts.GenerateNormalMap = true
	opts.IncludeTopDown = true

	set, err := NewOrchestrator(r, opts).Run(context.Background(), unitCube())
	if err != nil {
		t.Fatal(err)
	}

	// 4 radial + 1 top-down, two passes each.
	if len(set.Rects) != 5 {
		t.Errorf("got %d rects, want 5", len(set.Rects))
	}
	if set.Views != 4 {
		t.Errorf("Views = %d, want 4 (top-down not counted)", set.Views)
	}
	if set.Normal == nil {
		t.Fatal("expected a normal atlas")
	}
	if set.Normal.Width != set.Albedo.Width || set.Normal.Height != set.Albedo.Height {
		t.Error("normal atlas size differs from albedo")
	}
	if len(r.calls) != 10 {
		t.Fatalf("got %d capture calls, want 10", len(r.calls))
	}
	for i := 0; i < 10; i += 2 {
		if r.calls[i] != ChannelAlbedo || r.calls[i+1] != ChannelNormal {
			t.Errorf("view %d passes = %v,%v, want albedo,normal", i/2, r.calls[i], r.calls[i+1])
		}
	}
}

func TestRunRenderFailureAbortsBatch(t *testing.T) {
	r := &fakeRenderer{fail: true}
	set, err := NewOrchestrator(r, defaultOptions()).Run(context.Background(), unitCube())
	if !errors.Is(err, ErrRenderFailure) {
		t.Fatalf("got %v, want ErrRenderFailure", err)
	}
	if set != nil {
		t.Error("no partial texture set on render failure")
	}
	if len(r.calls) != 1 {
		t.Errorf("batch continued after failure: %d calls", len(r.calls))
	}
}

func TestRunCanceledBetweenViews(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOrchestrator(&fakeRenderer{}, defaultOptions()).Run(ctx, unitCube())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestRunInvalidOptions(t *testing.T) {
	cases := []func(*Options){
		func(o *Options) { o.Views = 0 },
		func(o *Options) { o.AtlasHeight = 0 },
		func(o *Options) { o.Supersampling = 3 },
		func(o *Options) { o.CaptureDistanceOffset = -1 },
		func(o *Options) { o.FramePadding = 0.5 },
		func(o *Options) { o.Processing.AlphaClipThreshold = 1 },
		func(o *Options) { o.Processing.EdgePaddingIterations = 11 },
	}
	for i, mutate := range cases {
		opts := defaultOptions()
		mutate(&opts)
		if _, err := NewOrchestrator(&fakeRenderer{}, opts).Run(context.Background(), unitCube()); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: got %v, want ErrInvalidInput", i, err)
		}
	}

	if _, err := NewOrchestrator(nil, defaultOptions()).Run(context.Background(), unitCube()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil renderer: got %v, want ErrInvalidInput", err)
	}
}
