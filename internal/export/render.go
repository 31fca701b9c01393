package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/engine"
)

// FramePattern names rendered frames inside a frame directory.
const FramePattern = "frame_%04d.png"

const defaultDuration = 2 * time.Second

var ErrNothingToRender = errors.New("nothing to render")

// Options control offline rendering.
type Options struct {
	FPS      int
	Duration time.Duration // zero means the longest timeline
	Workers  int           // zero means GOMAXPROCS
	Engine   []engine.Option
}

// SceneDuration is the time the longest timeline takes to finish one run
// after its delay. Documents without timelines render defaultDuration.
func SceneDuration(doc *document.Document) time.Duration {
	var longest time.Duration
	for _, def := range doc.Timelines {
		d := time.Duration((def.DelayMS + def.DurationMS) * float64(time.Millisecond))
		longest = max(longest, d)
	}
	if longest <= 0 {
		return defaultDuration
	}
	return longest
}

// FrameCount returns how many frames cover d at fps. It is at least one.
func FrameCount(fps int, d time.Duration) int {
	n := int(math.Ceil(d.Seconds() * float64(fps)))
	return max(n, 1)
}

func frameTime(i, fps int) time.Duration {
	return time.Duration(i) * time.Second / time.Duration(fps)
}

// RenderFrames rasterizes doc into numbered PNG files in dir and returns
// the number written. Workers each take a contiguous run of frames on
// their own engine, so animation expiry sees time move forward.
func RenderFrames(ctx context.Context, doc *document.Document, opts Options, dir string) (int, error) {
	if doc == nil {
		return 0, ErrNothingToRender
	}
	if opts.FPS <= 0 {
		return 0, fmt.Errorf("fps must be positive, got %d", opts.FPS)
	}
	dur := opts.Duration
	if dur <= 0 {
		dur = SceneDuration(doc)
	}
	total := FrameCount(opts.FPS, dur)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, total)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		from, to := w*total/workers, (w+1)*total/workers
		g.Go(func() error {
			r, err := newFrameRenderer(doc, opts.Engine)
			if err != nil {
				return err
			}
			for i := from; i < to; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				path := filepath.Join(dir, fmt.Sprintf(FramePattern, i))
				if err := r.renderFile(ctx, frameTime(i, opts.FPS), path); err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total, nil
}

// RenderPNG writes the scene as it looks at offset at.
func RenderPNG(ctx context.Context, w io.Writer, doc *document.Document, at time.Duration, opts ...engine.Option) error {
	if doc == nil {
		return ErrNothingToRender
	}
	r, err := newFrameRenderer(doc, opts)
	if err != nil {
		return err
	}
	return r.render(ctx, at, w)
}

type frameRenderer struct {
	clock *engine.OffsetClock
	eng   *engine.Engine
	scene document.Scene
}

func newFrameRenderer(doc *document.Document, opts []engine.Option) (*frameRenderer, error) {
	clock := engine.NewOffsetClock()
	eng := engine.NewEngine(append(opts[:len(opts):len(opts)], engine.WithClock(clock))...)
	if err := eng.LoadDocument(doc); err != nil {
		return nil, err
	}
	return &frameRenderer{clock: clock, eng: eng, scene: doc.Scene}, nil
}

func (r *frameRenderer) render(ctx context.Context, at time.Duration, w io.Writer) error {
	r.clock.Set(at)
	raster := canvas.NewRaster(r.scene.Width, r.scene.Height, r.scene.Background)
	defer raster.Close()
	if err := r.eng.RenderWhenReady(ctx, raster); err != nil {
		return err
	}
	if err := raster.Err(); err != nil {
		return err
	}
	return raster.EncodePNG(w)
}

func (r *frameRenderer) renderFile(ctx context.Context, at time.Duration, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.render(ctx, at, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
