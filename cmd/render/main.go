// Command render rasterizes a scene document to a PNG at a time offset, or
// to a video through ffmpeg.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/export"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "scene document (.json, .yaml); empty renders the sample scene")
		out       = flag.String("out", "frame.png", "output file; the extension picks png, mp4, gif or webm")
		at        = flag.Duration("at", 0, "time offset of a PNG frame")
		fps       = flag.Int("fps", 24, "frames per second of a video")
		duration  = flag.Duration("duration", 0, "video length; zero uses the longest timeline")
		ffmpeg    = flag.String("ffmpeg", "ffmpeg", "ffmpeg binary")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *scenePath, *out, *at, *fps, *duration, *ffmpeg); err != nil {
		slog.Error("render failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, scenePath, out string, at time.Duration, fps int, duration time.Duration, ffmpeg string) error {
	doc := document.NewSampleDocument()
	if scenePath != "" {
		var err error
		if doc, err = document.ReadFile(scenePath); err != nil {
			return err
		}
	}

	format := filepath.Ext(out)
	if format != "" {
		format = format[1:]
	}
	if format == "png" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := export.RenderPNG(ctx, f, doc, at); err != nil {
			f.Close()
			return err
		}
		slog.Info("frame written", "out", out, "at", at)
		return f.Close()
	}

	if _, err := export.ContentType(format); err != nil {
		return err
	}
	tempDir, err := os.MkdirTemp("", "shapekit-render-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tempDir)

	start := time.Now()
	frames, err := export.RenderFrames(ctx, doc, export.Options{FPS: fps, Duration: duration}, tempDir)
	if err != nil {
		return err
	}
	slog.Debug("frames rendered", "frames", frames, "took", time.Since(start))

	video, err := export.NewEncoder(ffmpeg).Encode(ctx, tempDir, format, fps)
	if err != nil {
		return err
	}
	if err := moveFile(video, out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	slog.Info("video written", "out", out, "frames", frames, "took", time.Since(start))
	return nil
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
