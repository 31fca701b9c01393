package asset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/inamate/shapekit/internal/shape"
	"github.com/inamate/shapekit/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

// URLPrefix is where stored assets are served. Image shapes may use these
// URLs as their src.
const URLPrefix = "/assets/"

var ErrNotFound = errors.New("asset not found")

var supportedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}

// Handler serves asset upload and retrieval endpoints.
type Handler struct {
	dir string
}

// NewHandler creates a new asset handler that stores files in dir.
func NewHandler(dir string) *Handler {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir}
}

// Upload handles POST /assets/upload (multipart form with "file" field).
// Every accepted format is re-encoded as PNG.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	n, _ := file.Read(sniff)
	contentType := http.DetectContentType(sniff[:n])
	if !supportedTypes[contentType] {
		http.Error(w, "unsupported image type "+contentType, http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	img, format, err := image.Decode(file)
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}

	bounds := img.Bounds()
	assetID := typeid.NewAssetID()
	filename := assetID + ".png"
	filePath := filepath.Join(h.dir, filename)

	if err := writePNG(filePath, img); err != nil {
		slog.Error("save asset", "error", err, "asset", assetID)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	slog.Info("asset stored", "asset", assetID, "format", format, "width", bounds.Dx(), "height", bounds.Dy())

	resp := UploadResponse{
		ID:     assetID,
		URL:    URLPrefix + filename,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Type:   "png",
		Name:   header.Filename,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix(URLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// DeleteAsset handles DELETE /assets/{assetId}.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["assetId"]
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Delete(assetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("delete asset", "error", err, "asset", assetID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes an asset file from disk.
func (h *Handler) Delete(assetID string) error {
	err := os.Remove(filepath.Join(h.dir, assetID+".png"))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, assetID)
	}
	return err
}

// Fetcher resolves asset URLs to files in the asset directory and hands
// every other source to next.
func (h *Handler) Fetcher(next shape.FetchFunc) shape.FetchFunc {
	return func(ctx context.Context, src string) (image.Image, error) {
		name, ok := strings.CutPrefix(src, URLPrefix)
		if !ok {
			return next(ctx, src)
		}
		f, err := os.Open(filepath.Join(h.dir, filepath.Base(name)))
		if err != nil {
			return nil, fmt.Errorf("open asset: %w", err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode asset: %w", err)
		}
		return img, nil
	}
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}
