package shape

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inamate/shapekit/internal/canvas"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type countingFetcher struct {
	calls atomic.Int32
	err   error
	gate  chan struct{}
}

func (f *countingFetcher) fetch(ctx context.Context, src string) (image.Image, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func TestLoaderFetchesOnce(t *testing.T) {
	f := &countingFetcher{}
	l := NewImageLoader(WithFetcher(f.fetch))

	a := l.Load("a.png", LoadCallbacks{})
	b := l.Load("a.png", LoadCallbacks{})
	if a != b {
		t.Error("repeated Load should return the same entry")
	}
	e, err := l.Wait(context.Background(), "a.png")
	if err != nil {
		t.Fatal(err)
	}
	if e.Loading() || e.Image() == nil || e.Err() != nil {
		t.Errorf("entry not loaded: loading=%v err=%v", e.Loading(), e.Err())
	}
	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}

	l.Evict("a.png")
	if l.Len() != 0 {
		t.Errorf("Len() = %d after evict", l.Len())
	}
	if _, err := l.Wait(context.Background(), "a.png"); err != nil {
		t.Fatal(err)
	}
	if got := f.calls.Load(); got != 2 {
		t.Errorf("fetch calls after evict = %d, want 2", got)
	}
}

func TestLoaderEvictDuringFetch(t *testing.T) {
	f := &countingFetcher{gate: make(chan struct{})}
	l := NewImageLoader(WithFetcher(f.fetch))

	first := l.Load("a.png", LoadCallbacks{})
	deadline := time.Now().Add(time.Second)
	for f.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	l.Evict("a.png")
	second := l.Load("a.png", LoadCallbacks{})
	if first == second {
		t.Fatal("Load after Evict should return a new entry")
	}
	time.Sleep(20 * time.Millisecond)
	close(f.gate)

	<-first.Done()
	<-second.Done()
	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	if second.Image() == nil || second.Image() != first.Image() {
		t.Error("both entries should share the in-flight result")
	}
}

func TestLoaderCallbacks(t *testing.T) {
	var loaded, failed atomic.Int32
	cb := LoadCallbacks{
		OnLoad:      func() { loaded.Add(1) },
		OnLoadError: func() { failed.Add(1) },
	}

	ok := NewImageLoader(WithFetcher((&countingFetcher{}).fetch))
	<-ok.Load("x", cb).Done()
	<-ok.Load("x", cb).Done()
	if loaded.Load() != 1 || failed.Load() != 0 {
		t.Errorf("loaded=%d failed=%d, want 1/0", loaded.Load(), failed.Load())
	}

	bad := NewImageLoader(WithFetcher((&countingFetcher{err: errors.New("boom")}).fetch))
	e := bad.Load("y", cb)
	<-e.Done()
	if failed.Load() != 1 {
		t.Errorf("failed = %d, want 1", failed.Load())
	}
	if e.Err() == nil || e.Image() != nil {
		t.Errorf("entry should have failed: err=%v", e.Err())
	}
}

func TestLoaderWaitHonorsContext(t *testing.T) {
	f := &countingFetcher{gate: make(chan struct{})}
	defer close(f.gate)
	l := NewImageLoader(WithFetcher(f.fetch))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	e, err := l.Wait(ctx, "slow.png")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait error = %v, want deadline exceeded", err)
	}
	if !e.Loading() {
		t.Error("entry should still be loading")
	}
}

func TestLoaderPreload(t *testing.T) {
	f := &countingFetcher{}
	l := NewImageLoader(WithFetcher(f.fetch))
	if err := l.Preload(context.Background(), "a", "b", "c", "a"); err != nil {
		t.Fatal(err)
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
	if got := f.calls.Load(); got != 3 {
		t.Errorf("fetch calls = %d, want 3", got)
	}
}

func TestFetcherSources(t *testing.T) {
	data := testPNG(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dot.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dot.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	fetch := NewFetcher(srv.Client(), dir)
	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"relative file", "dot.png", false},
		{"file url", "file://" + filepath.Join(dir, "dot.png"), false},
		{"data url", "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), false},
		{"http", srv.URL + "/dot.png", false},
		{"http not found", srv.URL + "/nope.png", true},
		{"missing file", "nope.png", true},
		{"empty", "", true},
		{"not an image", "data:text/plain,hello", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := fetch(context.Background(), tt.src)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if img.Bounds().Dx() != 2 {
				t.Errorf("bounds = %v", img.Bounds())
			}
		})
	}

	if _, err := fetch(context.Background(), ""); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("empty source error = %v, want ErrUnsupportedSource", err)
	}
}

func TestImageDrawWhenReady(t *testing.T) {
	f := &countingFetcher{}
	l := NewImageLoader(WithFetcher(f.fetch))
	sh, err := New(ImageSchema{Src: "pic.png", Width: 40, Height: 30}, WithImageLoader(l), WithMeasurer(fixedMeasurer{}))
	if err != nil {
		t.Fatal(err)
	}
	p, ok := sh.(Pending)
	if !ok {
		t.Fatal("image shape should implement Pending")
	}

	rec := canvas.NewRecorder(fixedMeasurer{})
	if err := p.DrawWhenReady(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	imgs := rec.Find("drawImage")
	if len(imgs) != 1 || imgs[0].Value != "pic.png" {
		t.Fatalf("drawImage = %+v", imgs)
	}
	if want := []float64{-20, -15, 40, 30}; !equalFloats(imgs[0].Args, want) {
		t.Errorf("drawImage args = %v, want %v", imgs[0].Args, want)
	}
}

func TestImageDrawBeforeLoad(t *testing.T) {
	f := &countingFetcher{gate: make(chan struct{})}
	l := NewImageLoader(WithFetcher(f.fetch))
	sh, err := New(ImageSchema{Src: "later.png", Width: 10, Height: 10}, WithImageLoader(l))
	if err != nil {
		t.Fatal(err)
	}

	rec := canvas.NewRecorder(fixedMeasurer{})
	sh.Draw(rec)
	if len(rec.Find("drawImage")) != 0 || len(rec.Find("fillRect")) != 0 {
		t.Errorf("pending image drew content: %v", rec.Ops())
	}
	if len(rec.Find("rect")) != 1 {
		t.Errorf("frame not drawn: %v", rec.Ops())
	}

	close(f.gate)
	if _, err := l.Wait(context.Background(), "later.png"); err != nil {
		t.Fatal(err)
	}
	rec.Reset()
	sh.Draw(rec)
	if len(rec.Find("drawImage")) != 1 {
		t.Errorf("loaded image not drawn: %v", rec.Ops())
	}
}

func TestImageFailureDrawsCheckerboard(t *testing.T) {
	var failures atomic.Int32
	l := NewImageLoader(WithFetcher((&countingFetcher{err: errors.New("gone")}).fetch))
	sh, err := New(ImageSchema{
		Src: "broken.png", Width: 20, Height: 20,
		OnLoadError: func() { failures.Add(1) },
	}, WithImageLoader(l))
	if err != nil {
		t.Fatal(err)
	}

	rec := canvas.NewRecorder(fixedMeasurer{})
	if err := sh.(Pending).DrawWhenReady(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	squares := rec.Find("fillRect")
	if len(squares) != 4 {
		t.Fatalf("checkerboard squares = %d, want 4", len(squares))
	}
	if len(rec.Find("drawImage")) != 0 {
		t.Error("failed image should not draw a bitmap")
	}

	// Drawing again neither refetches nor re-fires the callback.
	sh.Draw(rec)
	if got := failures.Load(); got != 1 {
		t.Errorf("OnLoadError calls = %d, want 1", got)
	}
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
