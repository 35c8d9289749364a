// Package config handles impostor generation configuration loading and
// management.
package config

import (
	"fmt"

	"github.com/Faultbox/impostor/internal/capture"
	"github.com/Faultbox/impostor/internal/imaging"
	"github.com/Faultbox/impostor/internal/meshgen"
)

// Config holds all generation settings.
type Config struct {
	Capture    CaptureConfig    `yaml:"capture"`
	Processing ProcessingConfig `yaml:"processing"`
	Mesh       MeshConfig       `yaml:"mesh"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CaptureConfig holds view planning and snapshot settings.
type CaptureConfig struct {
	Views                 int     `yaml:"views"`
	FrontFaceOnly         bool    `yaml:"front_face_only"`
	IncludeTopDown        bool    `yaml:"include_top_down"`
	AtlasHeight           int     `yaml:"atlas_height"`
	Supersampling         int     `yaml:"supersampling"` // 1, 2 or 4
	GenerateNormalMap     bool    `yaml:"generate_normal_map"`
	CaptureDistanceOffset float32 `yaml:"capture_distance_offset"`
	FramePadding          float32 `yaml:"frame_padding"` // [0, 0.3]
}

// ProcessingConfig holds snapshot post-processing settings.
type ProcessingConfig struct {
	AlphaClipThreshold    float32 `yaml:"alpha_clip_threshold"` // (0, 1)
	EdgePadding           bool    `yaml:"edge_padding"`
	EdgePaddingIterations int     `yaml:"edge_padding_iterations"` // [1, 10]
}

// MeshConfig holds billboard mesh settings.
type MeshConfig struct {
	Profile        string               `yaml:"profile"`     // quad | octagon
	RenderMode     string               `yaml:"render_mode"` // efficient | high_quality
	VerticalOffset float32              `yaml:"vertical_offset"`
	Octagon        OctagonConfig        `yaml:"octagon"`
	CrossSections  []CrossSectionConfig `yaml:"cross_sections"`
}

// OctagonConfig shapes the octagon profile, fractions in [0,1].
type OctagonConfig struct {
	BottomWidthFrac    float32 `yaml:"bottom_width_frac"`
	TopWidthFrac       float32 `yaml:"top_width_frac"`
	ShoulderCenterFrac float32 `yaml:"shoulder_center_frac"`
	ShoulderHeightFrac float32 `yaml:"shoulder_height_frac"`
}

// CrossSectionConfig describes one horizontal cross-section quad.
type CrossSectionConfig struct {
	HeightFraction  float32 `yaml:"height_fraction"`
	SizeMultiplier  float32 `yaml:"size_multiplier"`
	RotationDegrees float32 `yaml:"rotation_degrees"`
}

// OutputConfig holds artifact paths.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	BaseName string `yaml:"base_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	oct := meshgen.DefaultOctagonParams()
	return &Config{
		Capture: CaptureConfig{
			Views:                 8,
			FrontFaceOnly:         false,
			IncludeTopDown:        false,
			AtlasHeight:           256,
			Supersampling:         2,
			GenerateNormalMap:     true,
			CaptureDistanceOffset: 1.0,
			FramePadding:          0.05,
		},
		Processing: ProcessingConfig{
			AlphaClipThreshold:    0.5,
			EdgePadding:           true,
			EdgePaddingIterations: 4,
		},
		Mesh: MeshConfig{
			Profile:    "quad",
			RenderMode: "efficient",
			Octagon: OctagonConfig{
				BottomWidthFrac:    oct.BottomWidthFrac,
				TopWidthFrac:       oct.TopWidthFrac,
				ShoulderCenterFrac: oct.ShoulderCenterFrac,
				ShoulderHeightFrac: oct.ShoulderHeightFrac,
			},
		},
		Output: OutputConfig{
			Dir:      "impostor_out",
			BaseName: "impostor",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// CaptureOptions converts the config into pipeline capture options.
func (c *Config) CaptureOptions() capture.Options {
	return capture.Options{
		Views:                 c.Capture.Views,
		FrontFaceOnly:         c.Capture.FrontFaceOnly,
		IncludeTopDown:        c.Capture.IncludeTopDown,
		AtlasHeight:           c.Capture.AtlasHeight,
		Supersampling:         c.Capture.Supersampling,
		GenerateNormalMap:     c.Capture.GenerateNormalMap,
		CaptureDistanceOffset: c.Capture.CaptureDistanceOffset,
		FramePadding:          c.Capture.FramePadding,
		Processing: imaging.ProcessOptions{
			AlphaClipThreshold:    c.Processing.AlphaClipThreshold,
			EdgePadding:           c.Processing.EdgePadding,
			EdgePaddingIterations: c.Processing.EdgePaddingIterations,
		},
	}
}

// MeshOptions converts the config into mesh builder options.
func (c *Config) MeshOptions() (meshgen.Options, error) {
	opts := meshgen.Options{
		VerticalOffset: c.Mesh.VerticalOffset,
		Octagon: meshgen.OctagonParams{
			BottomWidthFrac:    c.Mesh.Octagon.BottomWidthFrac,
			TopWidthFrac:       c.Mesh.Octagon.TopWidthFrac,
			ShoulderCenterFrac: c.Mesh.Octagon.ShoulderCenterFrac,
			ShoulderHeightFrac: c.Mesh.Octagon.ShoulderHeightFrac,
		},
	}

	switch c.Mesh.Profile {
	case "", "quad":
		opts.Profile = meshgen.ProfileQuad
	case "octagon":
		opts.Profile = meshgen.ProfileOctagon
	default:
		return meshgen.Options{}, fmt.Errorf("unknown mesh profile %q", c.Mesh.Profile)
	}

	switch c.Mesh.RenderMode {
	case "", "efficient":
		opts.DoubleSided = false
	case "high_quality":
		opts.DoubleSided = true
	default:
		return meshgen.Options{}, fmt.Errorf("unknown render mode %q", c.Mesh.RenderMode)
	}

	for _, cs := range c.Mesh.CrossSections {
		opts.CrossSections = append(opts.CrossSections, meshgen.CrossSection{
			HeightFraction:  cs.HeightFraction,
			SizeMultiplier:  cs.SizeMultiplier,
			RotationDegrees: cs.RotationDegrees,
		})
	}

	return opts, nil
}

// Validate checks the full option surface.
func (c *Config) Validate() error {
	if err := c.CaptureOptions().Validate(); err != nil {
		return err
	}
	if _, err := c.MeshOptions(); err != nil {
		return err
	}
	return nil
}
