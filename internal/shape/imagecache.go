package shape

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 10 * time.Second

// FetchFunc loads and decodes the image behind src.
type FetchFunc func(ctx context.Context, src string) (image.Image, error)

// ImageEntry is the cached state of one source. It starts out loading and
// settles exactly once into loaded or failed.
type ImageEntry struct {
	src  string
	done chan struct{}

	mu  sync.Mutex
	img image.Image
	err error
}

// Image returns the decoded bitmap, or nil while loading or after failure.
func (e *ImageEntry) Image() image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.img
}

// Err returns the load error once the entry has failed.
func (e *ImageEntry) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Loading reports whether the load is still in flight.
func (e *ImageEntry) Loading() bool {
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// Done is closed when the entry settles.
func (e *ImageEntry) Done() <-chan struct{} { return e.done }

// LoadCallbacks are invoked once, when the load they started settles and
// before waiters are released.
type LoadCallbacks struct {
	OnLoad      func()
	OnLoadError func()
}

// ImageLoader caches images by source. A source that is cached or in
// flight is never fetched again.
type ImageLoader struct {
	mu      sync.Mutex
	entries map[string]*ImageEntry
	group   singleflight.Group

	fetch   FetchFunc
	timeout time.Duration
	logger  *slog.Logger
}

// LoaderOption configures an ImageLoader.
type LoaderOption func(*ImageLoader)

// WithFetcher replaces the default file / HTTP / data URL fetcher.
func WithFetcher(f FetchFunc) LoaderOption {
	return func(l *ImageLoader) { l.fetch = f }
}

// WithFetchTimeout bounds each fetch.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(l *ImageLoader) { l.timeout = d }
}

func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *ImageLoader) { l.logger = logger }
}

func NewImageLoader(opts ...LoaderOption) *ImageLoader {
	l := &ImageLoader{
		entries: make(map[string]*ImageEntry),
		timeout: defaultFetchTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fetch == nil {
		l.fetch = NewFetcher(http.DefaultClient, "")
	}
	return l
}

var (
	defaultLoader     *ImageLoader
	defaultLoaderOnce sync.Once
)

// DefaultImageLoader is the loader shapes use when none is injected.
func DefaultImageLoader() *ImageLoader {
	defaultLoaderOnce.Do(func() {
		defaultLoader = NewImageLoader()
	})
	return defaultLoader
}

// Load returns the entry for src, starting a fetch in the background if
// src has never been requested. cb fires only for the load this call
// starts.
func (l *ImageLoader) Load(src string, cb LoadCallbacks) *ImageEntry {
	l.mu.Lock()
	if e, ok := l.entries[src]; ok {
		l.mu.Unlock()
		return e
	}
	e := &ImageEntry{src: src, done: make(chan struct{})}
	l.entries[src] = e
	l.mu.Unlock()

	go l.resolve(e, cb)
	return e
}

func (l *ImageLoader) resolve(e *ImageEntry, cb LoadCallbacks) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	// entries already dedupes Load; the group only matters when Evict drops
	// a source whose fetch is still in flight and it is loaded again.
	v, err, _ := l.group.Do(e.src, func() (interface{}, error) {
		return l.fetch(ctx, e.src)
	})

	e.mu.Lock()
	if err != nil {
		e.err = err
	} else {
		e.img = v.(image.Image)
	}
	e.mu.Unlock()
	defer close(e.done)

	if err != nil {
		l.logger.Warn("image load failed", "src", truncateSrc(e.src), "error", err)
		if cb.OnLoadError != nil {
			cb.OnLoadError()
		}
		return
	}
	l.logger.Debug("image loaded", "src", truncateSrc(e.src))
	if cb.OnLoad != nil {
		cb.OnLoad()
	}
}

// Wait loads src if needed and blocks until it settles or ctx is done.
// A failed load is not an error here; inspect the entry.
func (l *ImageLoader) Wait(ctx context.Context, src string) (*ImageEntry, error) {
	e := l.Load(src, LoadCallbacks{})
	select {
	case <-e.Done():
		return e, nil
	case <-ctx.Done():
		return e, ctx.Err()
	}
}

// Preload fetches every source in parallel and waits for all of them.
func (l *ImageLoader) Preload(ctx context.Context, srcs ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range srcs {
		g.Go(func() error {
			_, err := l.Wait(ctx, src)
			return err
		})
	}
	return g.Wait()
}

// Evict drops src from the cache so the next Load fetches it again.
func (l *ImageLoader) Evict(src string) {
	l.mu.Lock()
	delete(l.entries, src)
	l.mu.Unlock()
}

// Len reports the number of cached sources.
func (l *ImageLoader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func truncateSrc(src string) string {
	if len(src) > 64 {
		return src[:64] + "..."
	}
	return src
}

var ErrUnsupportedSource = errors.New("unsupported image source")

// NewFetcher returns a FetchFunc for http(s) URLs, data URLs and file
// paths. Relative paths resolve against baseDir.
func NewFetcher(client *http.Client, baseDir string) FetchFunc {
	return func(ctx context.Context, src string) (image.Image, error) {
		rc, err := openSource(ctx, client, baseDir, src)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		img, _, err := image.Decode(rc)
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return img, nil
	}
}

func openSource(ctx context.Context, client *http.Client, baseDir, src string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch image: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
		}
		return resp.Body, nil

	case strings.HasPrefix(src, "data:"):
		meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
		if !ok {
			return nil, fmt.Errorf("%w: malformed data URL", ErrUnsupportedSource)
		}
		if strings.HasSuffix(meta, ";base64") {
			return io.NopCloser(base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload))), nil
		}
		raw, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
		}
		return io.NopCloser(strings.NewReader(raw)), nil

	case src == "":
		return nil, fmt.Errorf("%w: empty source", ErrUnsupportedSource)

	default:
		path := strings.TrimPrefix(src, "file://")
		if baseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, filepath.Clean("/"+path))
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open image: %w", err)
		}
		return f, nil
	}
}
