// Package main is the entry point for the impostor baking tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/Faultbox/impostor/internal/capture"
	"github.com/Faultbox/impostor/internal/config"
	"github.com/Faultbox/impostor/internal/export"
	"github.com/Faultbox/impostor/internal/imaging"
	"github.com/Faultbox/impostor/internal/impostor"
	"github.com/Faultbox/impostor/internal/logger"
	"github.com/Faultbox/impostor/internal/render"
	"github.com/Faultbox/impostor/pkg/geom"
	"github.com/Faultbox/impostor/pkg/objfile"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: impostor [flags] model.obj [texture.png|.bmp|.tiff]")
		os.Exit(2)
	}
	modelPath := args[0]
	texturePath := ""
	if len(args) > 1 {
		texturePath = args[1]
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Impostor Baker ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg, modelPath, texturePath); err != nil {
		logger.Error("bake failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, modelPath, texturePath string) error {
	model, err := objfile.Load(modelPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", modelPath, err)
	}
	min, max := model.Bounds()
	bounds := geom.FromMinMax(min, max)

	logger.Info("model loaded",
		zap.String("path", modelPath),
		zap.Int("vertices", len(model.Positions)),
		zap.Int("triangles", len(model.Indices)/3),
	)

	var texture *imaging.Image
	if texturePath != "" {
		texture, err = loadTexture(texturePath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", texturePath, err)
		}
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	defer renderer.Close()

	if err := renderer.SetModel(&render.Model{
		Positions: model.Positions,
		Normals:   model.Normals,
		UVs:       model.UVs,
		Indices:   model.Indices,
		Texture:   texture,
	}); err != nil {
		return err
	}

	meshOpts, err := cfg.MeshOptions()
	if err != nil {
		return err
	}

	result, err := impostor.Generate(context.Background(), renderer, bounds, cfg.CaptureOptions(), meshOpts)
	if err != nil {
		// Packing failure still yields the raw snapshots; write them
		// out for inspection before bailing.
		if errors.Is(err, capture.ErrPackingFailure) && result != nil && result.Textures != nil {
			paths, werr := export.WriteSnapshots(result.Textures.Snapshots, cfg.Output.Dir, cfg.Output.BaseName)
			if werr != nil {
				logger.Error("writing snapshots", zap.Error(werr))
			} else {
				logger.Warn("atlas packing failed, wrote raw snapshots",
					zap.Int("count", len(paths)),
					zap.String("dir", cfg.Output.Dir),
				)
			}
		}
		return err
	}

	paths, err := export.WriteTextureSet(result.Textures, cfg.Output.Dir, cfg.Output.BaseName)
	if err != nil {
		return err
	}

	meshPath := filepath.Join(cfg.Output.Dir, cfg.Output.BaseName+".obj")
	if err := export.WriteMeshOBJ(result.Mesh, meshPath, cfg.Output.BaseName); err != nil {
		return err
	}
	paths = append(paths, meshPath)

	logger.Info("bake complete", zap.Strings("artifacts", paths))
	return nil
}

func loadTexture(path string) (*imaging.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var decoded image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		decoded, err = bmp.Decode(f)
	case ".tif", ".tiff":
		decoded, err = tiff.Decode(f)
	default:
		decoded, err = png.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding texture: %w", err)
	}
	rgba, ok := decoded.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(decoded.Bounds())
		draw.Draw(rgba, rgba.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	}
	return imaging.FromRGBA(rgba), nil
}
