package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
)

var ErrUnsupportedFormat = errors.New("unsupported format: must be mp4, gif, or webm")

// ContentType returns the MIME type of an export format.
func ContentType(format string) (string, error) {
	switch format {
	case "mp4":
		return "video/mp4", nil
	case "gif":
		return "image/gif", nil
	case "webm":
		return "video/webm", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Encoder turns a directory of numbered frames into a video with ffmpeg.
type Encoder struct {
	ffmpegPath string
}

func NewEncoder(ffmpegPath string) *Encoder {
	return &Encoder{ffmpegPath: ffmpegPath}
}

// Encode writes output.<format> into dir and returns its path.
func (e *Encoder) Encode(ctx context.Context, dir, format string, fps int) (string, error) {
	if _, err := ContentType(format); err != nil {
		return "", err
	}
	input := filepath.Join(dir, FramePattern)
	output := filepath.Join(dir, "output."+format)
	rate := strconv.Itoa(fps)

	var err error
	switch format {
	case "mp4":
		err = e.run(ctx,
			"-framerate", rate,
			"-i", input,
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-crf", "18",
			"-preset", "fast",
			"-movflags", "+faststart",
			output,
		)

	case "gif":
		// Two-pass GIF: generate palette then apply
		palette := filepath.Join(dir, "palette.png")
		err = e.run(ctx,
			"-framerate", rate,
			"-i", input,
			"-vf", "palettegen=stats_mode=diff",
			palette,
		)
		if err == nil {
			err = e.run(ctx,
				"-framerate", rate,
				"-i", input,
				"-i", palette,
				"-lavfi", "paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
				output,
			)
		}

	case "webm":
		err = e.run(ctx,
			"-framerate", rate,
			"-i", input,
			"-c:v", "libvpx-vp9",
			"-crf", "30",
			"-b:v", "0",
			"-pix_fmt", "yuva420p",
			output,
		)
	}
	if err != nil {
		return "", err
	}
	return output, nil
}

func (e *Encoder) run(ctx context.Context, args ...string) error {
	// -y overwrites output without prompting
	cmd := exec.CommandContext(ctx, e.ffmpegPath, append([]string{"-y"}, args...)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}
	return nil
}
