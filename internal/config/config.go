package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port              int           `envconfig:"PORT" default:"8080"`
	FPS               int           `envconfig:"FPS" default:"60"`
	AllowedOrigins    string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	AssetDir          string        `envconfig:"ASSET_DIR" default:"./data/assets"`
	ImageFetchTimeout time.Duration `envconfig:"IMAGE_FETCH_TIMEOUT" default:"10s"`
	FfmpegPath        string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
	CanvasWidth       int           `envconfig:"CANVAS_WIDTH" default:"1280"`
	CanvasHeight      int           `envconfig:"CANVAS_HEIGHT" default:"720"`
	SceneFile         string        `envconfig:"SCENE_FILE"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.FPS <= 0 || cfg.FPS > 240 {
		return nil, fmt.Errorf("FPS must be in [1, 240], got %d", cfg.FPS)
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits ALLOWED_ORIGINS into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginHosts strips the scheme from each origin, the form websocket
// origin patterns take.
func (c *Config) OriginHosts() []string {
	origins := c.Origins()
	for i, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			origins[i] = host
		}
	}
	return origins
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return l, nil
}
