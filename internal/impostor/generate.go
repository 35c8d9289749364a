// Package impostor ties the capture and mesh-generation stages into a
// single generation call.
package impostor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/impostor/internal/atlas"
	"github.com/Faultbox/impostor/internal/capture"
	"github.com/Faultbox/impostor/internal/logger"
	"github.com/Faultbox/impostor/internal/meshgen"
	"github.com/Faultbox/impostor/pkg/geom"
)

// Result is a complete generation: the packed atlases and the billboard
// mesh that references them. On a packing failure Textures holds the raw
// per-view snapshots and Mesh is nil.
type Result struct {
	Textures *atlas.TextureSet
	Mesh     *meshgen.Mesh
}

// Generate runs the full pipeline for one object: plan views, capture and
// pack the atlases, then build the billboard mesh. Each call uses fresh
// orchestrator state, so independent generations may run concurrently as
// long as they do not share a renderer.
func Generate(ctx context.Context, renderer capture.Renderer, bounds geom.Bounds, capOpts capture.Options, meshOpts meshgen.Options) (*Result, error) {
	// Cross-sections sample the top-down capture, so requesting them
	// without a top-down view can never build a valid mesh. Fail before
	// spending renders on it.
	if len(meshOpts.CrossSections) > 0 && !capOpts.IncludeTopDown {
		return nil, fmt.Errorf("%w: cross-sections require a top-down capture", capture.ErrPreconditionFailure)
	}

	set, err := capture.NewOrchestrator(renderer, capOpts).Run(ctx, bounds)
	if err != nil {
		// A packing failure still carries the per-view snapshots; hand
		// them back so the caller can salvage them.
		if errors.Is(err, capture.ErrPackingFailure) && set != nil {
			logger.Warn("atlas packing failed, per-view snapshots preserved",
				zap.Int("snapshots", len(set.Snapshots)))
			return &Result{Textures: set}, err
		}
		return nil, err
	}

	mesh, err := meshgen.Build(set, meshOpts)
	if err != nil {
		switch {
		case errors.Is(err, meshgen.ErrMissingTopDownRect):
			return nil, fmt.Errorf("%w: %v", capture.ErrPreconditionFailure, err)
		case errors.Is(err, meshgen.ErrIncompleteSet):
			return nil, fmt.Errorf("%w: %v", capture.ErrInvalidInput, err)
		default:
			return nil, err
		}
	}

	logger.Info("impostor generated",
		zap.Int("atlas_width", set.Albedo.Width),
		zap.Int("atlas_height", set.Albedo.Height),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
	)

	return &Result{Textures: set, Mesh: mesh}, nil
}
