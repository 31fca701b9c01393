package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/shapekit/internal/asset"
	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/collab"
	"github.com/inamate/shapekit/internal/config"
	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/engine"
	"github.com/inamate/shapekit/internal/export"
	mw "github.com/inamate/shapekit/internal/middleware"
	"github.com/inamate/shapekit/internal/preview"
	"github.com/inamate/shapekit/internal/shape"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	assetHandler := asset.NewHandler(cfg.AssetDir)
	httpClient := &http.Client{Timeout: cfg.ImageFetchTimeout}
	loader := shape.NewImageLoader(
		shape.WithFetcher(assetHandler.Fetcher(shape.NewFetcher(httpClient, ""))),
		shape.WithFetchTimeout(cfg.ImageFetchTimeout),
	)
	measurer := canvas.DefaultMeasurer()

	eng := engine.NewEngine(engine.WithImageLoader(loader), engine.WithMeasurer(measurer))
	if path := cfg.SceneFile; path != "" {
		doc, err := document.ReadFile(path)
		if err == nil {
			err = eng.LoadDocument(doc)
		}
		if err != nil {
			slog.Error("load scene", "error", err, "path", path)
			os.Exit(1)
		}
	} else if err := eng.LoadDocument(sampleScene(cfg)); err != nil {
		slog.Error("load sample scene", "error", err)
		os.Exit(1)
	}

	hub := collab.NewHub(eng)
	go hub.Run(ctx)
	go func() {
		if err := eng.Run(ctx, cfg.FPS, hub.BroadcastFrame); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("frame loop stopped", "error", err)
		}
	}()

	exportHandler := export.NewHandler(cfg.FfmpegPath, eng.Document,
		engine.WithImageLoader(loader), engine.WithMeasurer(measurer))

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	preview.NewHandler(eng).Register(r)

	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/assets/{assetId}", assetHandler.DeleteAsset).Methods(http.MethodDelete)
	r.PathPrefix(asset.URLPrefix).Handler(assetHandler.Serve()).Methods(http.MethodGet)

	r.HandleFunc("/export/video", exportHandler.ExportVideo).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/ws/frames", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, cfg.OriginHosts())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "fps", cfg.FPS)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// sampleScene is the built-in demo sized to the configured canvas.
func sampleScene(cfg *config.Config) *document.Document {
	doc := document.NewSampleDocument()
	doc.Scene.Width = cfg.CanvasWidth
	doc.Scene.Height = cfg.CanvasHeight
	return doc
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, origins []string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(hub, conn, r.URL.Query().Get("name"))
	client.Serve(r.Context())
}
