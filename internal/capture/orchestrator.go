package capture

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/impostor/internal/atlas"
	"github.com/Faultbox/impostor/internal/imaging"
	"github.com/Faultbox/impostor/internal/logger"
	"github.com/Faultbox/impostor/internal/view"
	"github.com/Faultbox/impostor/pkg/geom"
)

// Options configures one generation run.
type Options struct {
	Views                 int
	FrontFaceOnly         bool
	IncludeTopDown        bool
	AtlasHeight           int
	Supersampling         int
	GenerateNormalMap     bool
	CaptureDistanceOffset float32
	FramePadding          float32
	Processing            imaging.ProcessOptions
}

// Validate checks the option surface against its documented ranges.
func (o Options) Validate() error {
	switch {
	case o.Views < 1:
		return fmt.Errorf("%w: views must be >= 1, got %d", ErrInvalidInput, o.Views)
	case o.AtlasHeight < 1:
		return fmt.Errorf("%w: atlas height must be >= 1, got %d", ErrInvalidInput, o.AtlasHeight)
	case o.Supersampling != 1 && o.Supersampling != 2 && o.Supersampling != 4:
		return fmt.Errorf("%w: supersampling must be 1, 2 or 4, got %d", ErrInvalidInput, o.Supersampling)
	case o.CaptureDistanceOffset < 0:
		return fmt.Errorf("%w: capture distance offset must be >= 0, got %g", ErrInvalidInput, o.CaptureDistanceOffset)
	case o.FramePadding < 0 || o.FramePadding > 0.3:
		return fmt.Errorf("%w: frame padding must be in [0,0.3], got %g", ErrInvalidInput, o.FramePadding)
	case o.Processing.AlphaClipThreshold <= 0 || o.Processing.AlphaClipThreshold >= 1:
		return fmt.Errorf("%w: alpha clip threshold must be in (0,1), got %g", ErrInvalidInput, o.Processing.AlphaClipThreshold)
	}
	if o.Processing.EdgePadding {
		if it := o.Processing.EdgePaddingIterations; it < 1 || it > 10 {
			return fmt.Errorf("%w: edge padding iterations must be in [1,10], got %d", ErrInvalidInput, it)
		}
	}
	return nil
}

// Orchestrator runs the render-process-pack cycle for every planned view.
// Each instance holds the state of a single run; create a fresh one per
// invocation, concurrent runs must not share an instance.
type Orchestrator struct {
	renderer Renderer
	opts     Options
}

// NewOrchestrator creates an orchestrator for one generation run.
func NewOrchestrator(renderer Renderer, opts Options) *Orchestrator {
	return &Orchestrator{renderer: renderer, opts: opts}
}

// Run captures every planned view and packs the results into a texture set.
//
// Views are processed strictly sequentially: the renderer mutates shared
// scene state between captures, so a view's full cycle finishes before the
// next starts. ctx is only consulted between views; an in-flight render is
// never interrupted. On any failure the whole batch is aborted, nothing
// partial is returned — except the documented ErrPackingFailure case, where
// the returned set carries the unpacked snapshots as a fallback artifact.
func (o *Orchestrator) Run(ctx context.Context, bounds geom.Bounds) (*atlas.TextureSet, error) {
	if o.renderer == nil {
		return nil, fmt.Errorf("%w: no renderer", ErrInvalidInput)
	}
	if err := o.opts.Validate(); err != nil {
		return nil, err
	}

	plan, err := view.New(bounds, view.Params{
		Views:                 o.opts.Views,
		FrontFaceOnly:         o.opts.FrontFaceOnly,
		IncludeTopDown:        o.opts.IncludeTopDown,
		CaptureDistanceOffset: o.opts.CaptureDistanceOffset,
		FramePadding:          o.opts.FramePadding,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	logger.Info("capturing impostor views",
		zap.Int("radial", plan.RadialViews),
		zap.Bool("top_down", plan.HasTopDown),
		zap.Int("atlas_height", o.opts.AtlasHeight),
		zap.Int("supersampling", o.opts.Supersampling),
	)

	albedoList := make([]*imaging.Image, 0, len(plan.Specs))
	var normalList []*imaging.Image
	if o.opts.GenerateNormalMap {
		normalList = make([]*imaging.Image, 0, len(plan.Specs))
	}

	for i, spec := range plan.Specs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("aborted before view %d: %w", i, err)
		}

		// Per-view intermediates live only inside this iteration; once
		// folded into the running lists nothing render-target sized is
		// retained across views.
		albedo, normal, err := o.captureView(spec, i)
		if err != nil {
			return nil, err
		}

		albedoList = append(albedoList, albedo)
		if normalList != nil {
			normalList = append(normalList, normal)
		}
	}

	packedAlbedo, packedNormal, rects, err := atlas.Pack(albedoList, normalList)
	if err != nil {
		set := &atlas.TextureSet{
			Directions: plan.Directions,
			Sizes:      plan.Sizes,
			Views:      plan.RadialViews,
			Snapshots:  albedoList,
		}
		return set, fmt.Errorf("%w: %v", ErrPackingFailure, err)
	}

	logger.Info("atlas packed",
		zap.Int("width", packedAlbedo.Width),
		zap.Int("height", packedAlbedo.Height),
		zap.Int("rects", len(rects)),
	)

	return &atlas.TextureSet{
		Albedo:     packedAlbedo,
		Normal:     packedNormal,
		Rects:      rects,
		Directions: plan.Directions,
		Sizes:      plan.Sizes,
		Views:      plan.RadialViews,
	}, nil
}

// captureView renders and post-processes a single view.
func (o *Orchestrator) captureView(spec view.Spec, index int) (albedo, normal *imaging.Image, err error) {
	albedo, err = o.renderer.Capture(spec, o.opts.AtlasHeight, o.opts.Supersampling, ChannelAlbedo)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: view %d albedo: %v", ErrRenderFailure, index, err)
	}
	if albedo.Empty() {
		return nil, nil, fmt.Errorf("%w: view %d albedo: renderer returned an empty frame", ErrRenderFailure, index)
	}

	if o.opts.GenerateNormalMap {
		normal, err = o.renderer.Capture(spec, o.opts.AtlasHeight, o.opts.Supersampling, ChannelNormal)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: view %d normal: %v", ErrRenderFailure, index, err)
		}
	}

	if err := imaging.Process(albedo, normal, o.opts.Processing); err != nil {
		return nil, nil, fmt.Errorf("%w: view %d: %v", ErrInvalidInput, index, err)
	}

	logger.Debug("view captured",
		zap.Int("view", index),
		zap.Int("width", albedo.Width),
		zap.Int("height", albedo.Height),
		zap.Bool("normal", normal != nil),
	)
	return albedo, normal, nil
}
