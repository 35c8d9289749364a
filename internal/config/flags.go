package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagViews       = flag.Int("views", 0, "Radial view count")
	flagAtlasHeight = flag.Int("atlas-height", 0, "Atlas height in pixels")
	flagProfile     = flag.String("profile", "", "Mesh profile (quad or octagon)")
	flagRenderMode  = flag.String("render-mode", "", "Render mode (efficient or high_quality)")
	flagNormalMap   = flag.Bool("normal-map", false, "Generate a normal map atlas")
	flagNoNormalMap = flag.Bool("no-normal-map", false, "Skip the normal map atlas")
	flagTopDown     = flag.Bool("top-down", false, "Capture an additional top-down view")
	flagOut         = flag.String("out", "", "Output directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagViews > 0 {
		cfg.Capture.Views = *flagViews
	}
	if *flagAtlasHeight > 0 {
		cfg.Capture.AtlasHeight = *flagAtlasHeight
	}
	if *flagProfile != "" {
		cfg.Mesh.Profile = *flagProfile
	}
	if *flagRenderMode != "" {
		cfg.Mesh.RenderMode = *flagRenderMode
	}
	if *flagNormalMap {
		cfg.Capture.GenerateNormalMap = true
	}
	if *flagNoNormalMap {
		cfg.Capture.GenerateNormalMap = false
	}
	if *flagTopDown {
		cfg.Capture.IncludeTopDown = true
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
}
