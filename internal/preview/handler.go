package preview

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/shapekit/internal/animation"
	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/engine"
	"github.com/inamate/shapekit/internal/shape"
)

const maxDocumentSize = 4 << 20

// Handler exposes an engine over HTTP.
type Handler struct {
	engine *engine.Engine
}

func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// Register mounts the scene routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/scene", h.Load).Methods(http.MethodPost)
	r.HandleFunc("/scene", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/scene/sample", h.LoadSample).Methods(http.MethodPost)
	r.HandleFunc("/scene/state", h.State).Methods(http.MethodGet)
	r.HandleFunc("/scene/frame", h.Frame).Methods(http.MethodGet)
	r.HandleFunc("/scene/png", h.PNG).Methods(http.MethodGet)
	r.HandleFunc("/scene/hit", h.Hit).Methods(http.MethodGet)
	r.HandleFunc("/scene/bounds", h.Bounds).Methods(http.MethodGet)
	r.HandleFunc("/scene/selection", h.Select).Methods(http.MethodPost)
	r.HandleFunc("/scene/timelines", h.Timelines).Methods(http.MethodGet)
	r.HandleFunc("/scene/timelines/{timelineId}/play", h.Play).Methods(http.MethodPost)
	r.HandleFunc("/scene/timelines/{timelineId}/stop", h.Stop).Methods(http.MethodPost)
}

type playRequest struct {
	Shape    string  `json:"shape"`
	RunCount float64 `json:"runCount"`
}

type selectionRequest struct {
	IDs []string `json:"ids"`
}

type hitResponse struct {
	ShapeID string  `json:"shapeId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type frameResponse struct {
	Frame    int64            `json:"frame"`
	Commands []canvas.Command `json:"commands"`
}

// Load replaces the scene with the JSON or YAML document in the body.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document too large"})
		return
	}
	format := document.FormatFor(r.Header.Get("Content-Type"))
	if f := r.URL.Query().Get("format"); f != "" {
		format = document.FormatFor(f)
	}
	if err := h.engine.LoadDocumentData(data, format); err != nil {
		handleEngineError(w, err)
		return
	}
	h.State(w, r)
}

func (h *Handler) LoadSample(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.LoadSampleDocument(); err != nil {
		handleEngineError(w, err)
		return
	}
	h.State(w, r)
}

// Get returns the loaded document as JSON.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc := h.engine.Document()
	if doc == nil {
		handleEngineError(w, engine.ErrNoDocument)
		return
	}
	data, err := document.Encode(doc, document.FormatJSON)
	if err != nil {
		handleEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.State())
}

// Frame returns the current frame as recorded draw commands.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	if _, err := h.engine.Scene(); err != nil {
		handleEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frameResponse{
		Frame:    h.engine.State().Frame,
		Commands: h.engine.Frame(),
	})
}

// PNG rasterizes the current frame once every bitmap has loaded.
func (h *Handler) PNG(w http.ResponseWriter, r *http.Request) {
	scene, err := h.engine.Scene()
	if err != nil {
		handleEngineError(w, err)
		return
	}
	raster := canvas.NewRaster(scene.Width, scene.Height, scene.Background)
	defer raster.Close()
	if err := h.engine.RenderWhenReady(r.Context(), raster); err != nil {
		handleEngineError(w, err)
		return
	}
	if err := raster.Err(); err != nil {
		slog.Warn("raster reported errors", "error", err)
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := raster.EncodePNG(w); err != nil {
		slog.Error("encode png", "error", err)
	}
}

func (h *Handler) Hit(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y must be numbers"})
		return
	}
	writeJSON(w, http.StatusOK, hitResponse{ShapeID: h.engine.HitTest(x, y), X: x, Y: y})
}

// Bounds returns the combined bounding box of ?ids=a,b,c.
func (h *Handler) Bounds(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	writeJSON(w, http.StatusOK, h.engine.Bounds(ids))
}

// Select replaces the selection and returns its bounds.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.engine.SetSelection(req.IDs)
	writeJSON(w, http.StatusOK, map[string]any{
		"selection": h.engine.Selection(),
		"bounds":    h.engine.SelectionBounds(),
	})
}

func (h *Handler) Timelines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Timelines())
}

func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.engine.Play(mux.Vars(r)["timelineId"], req.Shape, req.RunCount); err != nil {
		handleEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.engine.Stop(mux.Vars(r)["timelineId"], req.Shape); err != nil {
		handleEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNoDocument):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no document loaded"})
	case errors.Is(err, engine.ErrUnknownShape), errors.Is(err, engine.ErrUnknownTimeline):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, document.ErrInvalidDocument),
		errors.Is(err, shape.ErrInvalidSchema),
		errors.Is(err, shape.ErrUnknownKind),
		errors.Is(err, shape.ErrUnknownProperty),
		errors.Is(err, shape.ErrPropertyType),
		errors.Is(err, animation.ErrInvalidTimeline),
		errors.Is(err, animation.ErrUnknownEasing),
		errors.Is(err, animation.ErrUninterpolable),
		errors.Is(err, animation.ErrEmptyImperativeTrack):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("engine error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
