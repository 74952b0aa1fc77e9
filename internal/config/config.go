package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"LocalBoard/internal/state"
)

var (
	ErrInvalidTool = errors.New("invalid tool")
	ErrInvalid     = errors.New("invalid config")
)

const envPrefix = "LOCALBOARD_"

// Config holds the drawing defaults and application settings.
type Config struct {
	Drawing  Drawing  `toml:"drawing"`
	Window   Window   `toml:"window"`
	LiveView LiveView `toml:"liveview"`
	Export   Export   `toml:"export"`
	LogLevel string   `toml:"log_level"`
}

type Drawing struct {
	Tool       state.Tool  `toml:"tool"`
	Color      state.Color `toml:"color"`
	EraserSize float32     `toml:"eraser_size"`
	Scale      float32     `toml:"scale"`
	Background string      `toml:"background"`
}

type Window struct {
	Title  string  `toml:"title"`
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

type LiveView struct {
	Enabled  bool   `toml:"enabled"`
	Port     int    `toml:"port"`
	MDNS     bool   `toml:"mdns"`
	Instance string `toml:"instance"`
}

type Export struct {
	Dir string `toml:"dir"`
}

func Default() Config {
	d := state.DefaultSettings()
	return Config{
		Drawing: Drawing{
			Tool:       d.Tool,
			Color:      d.Color,
			EraserSize: d.EraserSize,
			Scale:      d.Scale,
			Background: "#1e1e1e",
		},
		Window: Window{
			Title:  "Local Whiteboard",
			Width:  1024,
			Height: 768,
		},
		LiveView: LiveView{
			Enabled: true,
			Port:    8888,
			MDNS:    true,
		},
		Export:   Export{Dir: "."},
		LogLevel: "info",
	}
}

// Load returns the defaults overlaid with the TOML file at path (if path is
// non-empty) and then with LOCALBOARD_* environment variables. A .env file in
// the working directory is loaded first when present.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("Could not read .env file")
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("TOOL"); ok {
		c.Drawing.Tool = state.Tool(v)
	}
	if v, ok := lookup("COLOR"); ok {
		c.Drawing.Color = state.Color(v)
	}
	if v, ok := lookup("BACKGROUND"); ok {
		c.Drawing.Background = v
	}
	if v, ok := lookup("ERASER_SIZE"); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%sERASER_SIZE: %w", envPrefix, err)
		}
		c.Drawing.EraserSize = float32(f)
	}
	if v, ok := lookup("LIVEVIEW"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLIVEVIEW: %w", envPrefix, err)
		}
		c.LiveView.Enabled = b
	}
	if v, ok := lookup("PORT"); ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", envPrefix, err)
		}
		c.LiveView.Port = p
	}
	if v, ok := lookup("MDNS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMDNS: %w", envPrefix, err)
		}
		c.LiveView.MDNS = b
	}
	if v, ok := lookup("INSTANCE"); ok {
		c.LiveView.Instance = v
	}
	if v, ok := lookup("EXPORT_DIR"); ok {
		c.Export.Dir = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (c Config) Validate() error {
	if !c.Drawing.Tool.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTool, c.Drawing.Tool)
	}
	if c.Drawing.EraserSize <= 0 {
		return fmt.Errorf("%w: eraser_size must be positive, got %v", ErrInvalid, c.Drawing.EraserSize)
	}
	if c.Drawing.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalid, c.Drawing.Scale)
	}
	if c.LiveView.Enabled && (c.LiveView.Port <= 0 || c.LiveView.Port > 65535) {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.LiveView.Port)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ApplyLogging configures the global logrus logger.
func (c Config) ApplyLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// NewDrawingState starts a drawing session seeded with the configured defaults.
func (c Config) NewDrawingState() *state.DrawingState {
	return state.New(state.Settings{
		Tool:       c.Drawing.Tool,
		Color:      c.Drawing.Color,
		EraserSize: c.Drawing.EraserSize,
		Scale:      c.Drawing.Scale,
	})
}
