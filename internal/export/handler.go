package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/engine"
	"github.com/inamate/shapekit/internal/typeid"
)

const maxFPS = 120

// Request is the body of POST /export/video. Zero values take defaults.
type Request struct {
	Format     string  `json:"format"`
	FPS        int     `json:"fps"`
	DurationMS float64 `json:"duration"`
	Name       string  `json:"name"`
}

// DocumentSource returns the document to export.
type DocumentSource func() *document.Document

type Handler struct {
	encoder *Encoder
	source  DocumentSource
	opts    []engine.Option
}

func NewHandler(ffmpegPath string, source DocumentSource, opts ...engine.Option) *Handler {
	return &Handler{encoder: NewEncoder(ffmpegPath), source: source, opts: opts}
}

// ExportVideo renders the current document server side and streams the
// encoded video back.
func (h *Handler) ExportVideo(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Format == "" {
		req.Format = "mp4"
	}
	contentType, err := ContentType(req.Format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.FPS <= 0 || req.FPS > maxFPS {
		req.FPS = 24
	}
	name := sanitizeName(req.Name)

	doc := h.source()
	if doc == nil {
		http.Error(w, "no document loaded", http.StatusConflict)
		return
	}

	exportID := typeid.NewExportID()
	tempDir, err := os.MkdirTemp("", "shapekit-"+exportID+"-*")
	if err != nil {
		slog.Error("create temp dir", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tempDir)

	start := time.Now()
	frames, err := RenderFrames(r.Context(), doc, Options{
		FPS:      req.FPS,
		Duration: time.Duration(req.DurationMS * float64(time.Millisecond)),
		Engine:   h.opts,
	}, tempDir)
	if err != nil {
		slog.Error("render frames failed", "export", exportID, "error", err)
		http.Error(w, fmt.Sprintf("render failed: %v", err), http.StatusInternalServerError)
		return
	}
	slog.Info("export started", "export", exportID, "format", req.Format, "frames", frames, "fps", req.FPS)

	outputFile, err := h.encoder.Encode(r.Context(), tempDir, req.Format, req.FPS)
	if err != nil {
		slog.Error("ffmpeg failed", "export", exportID, "error", err)
		http.Error(w, fmt.Sprintf("encoding failed: %v", err), http.StatusInternalServerError)
		return
	}

	outFile, err := os.Open(outputFile)
	if err != nil {
		slog.Error("open output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer outFile.Close()

	stat, err := outFile.Stat()
	if err != nil {
		slog.Error("stat output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, req.Format))
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
	io.Copy(w, outFile)

	slog.Info("export complete", "export", exportID, "size", stat.Size(), "took", time.Since(start))
}

func sanitizeName(name string) string {
	if name == "" {
		return "animation"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
