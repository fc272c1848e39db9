package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every cloudray setting. It can be loaded from YAML; flags
// given on the command line take precedence over the file.
type Config struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Output   string  `yaml:"output"`
	Distance float64 `yaml:"distance"`
	Yaw      float64 `yaml:"yaw"`
	Pitch    float64 `yaml:"pitch"`
	RayZ     float64 `yaml:"ray_z"`
	FOV      float64 `yaml:"fov"`
	Workers  int     `yaml:"workers"`
	Caption  string  `yaml:"caption"`
	Scale    int     `yaml:"scale"`
	Frames   int     `yaml:"frames"`
	FPS      int     `yaml:"fps"`
	Video    string  `yaml:"video"`
	FFmpeg   string  `yaml:"ffmpeg"`
	SPIRV    string  `yaml:"spirv"`
	GPU      bool    `yaml:"gpu"`
	Verbose  bool    `yaml:"verbose"`
}

func defaultConfig() Config {
	return Config{
		Width:    640,
		Height:   360,
		Output:   "clouds.png",
		Distance: 15,
		Pitch:    0.4,
		RayZ:     -1,
		FOV:      1.0,
		Scale:    1,
		Frames:   1,
		FPS:      30,
	}
}

func bindFlags(fs *flag.FlagSet, c *Config) {
	fs.IntVar(&c.Width, "width", c.Width, "image width")
	fs.IntVar(&c.Height, "height", c.Height, "image height")
	fs.StringVar(&c.Output, "output", c.Output, "output PNG file")
	fs.Float64Var(&c.Distance, "distance", c.Distance, "orbit camera distance")
	fs.Float64Var(&c.Yaw, "yaw", c.Yaw, "orbit camera yaw in radians")
	fs.Float64Var(&c.Pitch, "pitch", c.Pitch, "orbit camera pitch in radians")
	fs.Float64Var(&c.RayZ, "ray-z", c.RayZ, "local z of the full-screen quad vertices")
	fs.Float64Var(&c.FOV, "fov", c.FOV, "vertical field of view in radians")
	fs.IntVar(&c.Workers, "workers", c.Workers, "software renderer workers (0 = GOMAXPROCS)")
	fs.StringVar(&c.Caption, "caption", c.Caption, "caption drawn in the bottom-left corner")
	fs.IntVar(&c.Scale, "scale", c.Scale, "integer upscale factor of the output")
	fs.IntVar(&c.Frames, "frames", c.Frames, "number of turntable frames")
	fs.IntVar(&c.FPS, "fps", c.FPS, "turntable video frame rate")
	fs.StringVar(&c.Video, "video", c.Video, "turntable video output file (requires ffmpeg)")
	fs.StringVar(&c.FFmpeg, "ffmpeg", c.FFmpeg, "path to the ffmpeg binary")
	fs.StringVar(&c.SPIRV, "spirv", c.SPIRV, "write the compiled SPIR-V shader to this file")
	fs.BoolVar(&c.GPU, "gpu", c.GPU, "render on the GPU, falling back to software")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "debug logging")
}

// parseArgs resolves defaults, the optional -config file and flags, in
// increasing precedence.
func parseArgs(args []string) (Config, error) {
	cfg := defaultConfig()
	fs := flag.NewFlagSet("cloudray", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	bindFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			return cfg, err
		}
		// Flags are bound to cfg, so parsing again reapplies only the flags
		// that were given explicitly.
		if err := fs.Parse(args); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.validate()
}

// loadConfig merges the YAML file at path into cfg. Keys missing from the
// file keep their current values.
func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", c.Width, c.Height))
	}
	if c.Scale < 1 {
		errs = append(errs, fmt.Errorf("scale must be at least 1, got %d", c.Scale))
	}
	if c.Frames < 1 {
		errs = append(errs, fmt.Errorf("frames must be at least 1, got %d", c.Frames))
	}
	if c.Video != "" && c.FPS < 1 {
		errs = append(errs, fmt.Errorf("fps must be at least 1, got %d", c.FPS))
	}
	if c.Video == "" && c.Output == "" {
		errs = append(errs, errors.New("no output: set -output or -video"))
	}
	return errors.Join(errs...)
}
