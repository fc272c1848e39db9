package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/schollz/progressbar/v3"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// writeFrames renders cfg.Frames turntable frames, one full orbit in total,
// and writes their raw RGBA pixels to w.
func writeFrames(ctx context.Context, cfg Config, r frameRenderer, w io.Writer, bar *progressbar.ProgressBar) error {
	for i := range cfg.Frames {
		yaw := 2 * math.Pi * float64(i) / float64(cfg.Frames)
		img, err := r.Render(ctx, camera(cfg, yaw))
		if err != nil {
			return fmt.Errorf("render frame %d: %w", i, err)
		}
		if img, err = finish(cfg, img); err != nil {
			return err
		}
		if _, err := w.Write(img.Pix); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
		_ = bar.Add(1)
	}
	return nil
}

// encodeArgs returns the ffmpeg input and output arguments for raw RGBA
// frames of the configured output size.
func encodeArgs(cfg Config) (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", cfg.Width*cfg.Scale, cfg.Height*cfg.Scale),
		"framerate": cfg.FPS,
	}
	outputArgs = ffmpeg.KwArgs{
		"c:v":     "libx264",
		"pix_fmt": "yuv420p",
		// yuv420p needs even dimensions.
		"vf": "pad=ceil(iw/2)*2:ceil(ih/2)*2",
	}
	return inputArgs, outputArgs
}

// renderTurntable renders a full orbit and encodes it to cfg.Video by piping
// raw frames into ffmpeg.
func renderTurntable(ctx context.Context, cfg Config, r frameRenderer, logger *slog.Logger) error {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := encodeArgs(cfg)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(cfg.Video, outputArgs).
		OverWriteOutput().WithInput(pipeReader)
	if cfg.FFmpeg != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(cfg.FFmpeg)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// Unblock the writer if ffmpeg exits early.
		_ = pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	bar := progressbar.Default(int64(cfg.Frames), "rendering")
	err := writeFrames(ctx, cfg, r, pipeWriter, bar)
	_ = bar.Close()
	_ = pipeWriter.CloseWithError(err)

	if runErr := <-errc; runErr != nil {
		if err != nil {
			return err
		}
		return fmt.Errorf("ffmpeg: %w", runErr)
	}
	if err != nil {
		return err
	}
	logger.Info("video written", "path", cfg.Video, "frames", cfg.Frames, "fps", cfg.FPS)
	return nil
}
