// Command cloudray renders the clouds view-ray pass to a PNG, or a turntable
// orbit of it to a video.
//
// Usage:
//
//	cloudray -width 640 -height 360 -yaw 0.5 -output sky.png
//	cloudray -config cloudray.yaml -frames 120 -video orbit.mp4
//	cloudray -spirv clouds.spv
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/clouds"
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "cloudray:", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	clouds.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("cloudray failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if cfg.SPIRV != "" {
		if err := writeSPIRV(cfg.SPIRV); err != nil {
			return err
		}
		logger.Info("SPIR-V written", "path", cfg.SPIRV)
	}

	r, err := newFrameRenderer(cfg, logger)
	if err != nil {
		return err
	}
	defer r.Close()

	if cfg.Video != "" {
		return renderTurntable(ctx, cfg, r, logger)
	}

	img, err := r.Render(ctx, camera(cfg, 0))
	if err != nil {
		return err
	}
	if img, err = finish(cfg, img); err != nil {
		return err
	}
	if err := savePNG(cfg.Output, img); err != nil {
		return err
	}
	logger.Info("image written", "path", cfg.Output, "size", img.Bounds().Size())
	return nil
}

// writeSPIRV compiles the shader and writes it as a little-endian SPIR-V
// binary.
func writeSPIRV(path string) error {
	words, err := clouds.CompileSPIRV()
	if err != nil {
		return err
	}
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil { //nolint:gosec // output file is meant to be readable
		return fmt.Errorf("write SPIR-V: %w", err)
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
