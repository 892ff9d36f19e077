package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/flavioheleno/moonclock"
	"github.com/flavioheleno/moonclock/ssd1322"
	"github.com/flavioheleno/moonclock/textsurface"
)

// Config is the resolved moonclock configuration.
type Config struct {
	TickInterval  time.Duration
	SyncInterval  time.Duration
	Precision     int
	SearchMaxDays int
	Location      string
	Font          string
	Display       Display
}

// Display holds the panel wiring.
type Display struct {
	Width    int
	Height   int
	SPI      string
	DC       string
	RST      string
	Hz       int64
	Rotated  bool
	Contrast int
	Invert   bool
}

const (
	defaultConfigPath = "~/.config/moonclock/config.toml"
	defaultDC         = "GPIO25"
	defaultContrast   = 0xFF
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		TickInterval:  moonclock.DefaultTickInterval,
		SyncInterval:  moonclock.DefaultSyncInterval,
		Precision:     moonclock.DefaultPrecision,
		SearchMaxDays: moonclock.DefaultSearchDays,
		Location:      "UTC",
		Font:          textsurface.FaceBasic,
		Display: Display{
			Width:    256,
			Height:   64,
			DC:       defaultDC,
			Hz:       int64(ssd1322.DefaultHz / physic.Hertz),
			Contrast: defaultContrast,
		},
	}
}

type rawDisplay struct {
	Width    int    `toml:"width" yaml:"width"`
	Height   int    `toml:"height" yaml:"height"`
	SPI      string `toml:"spi" yaml:"spi"`
	DC       string `toml:"dc" yaml:"dc"`
	RST      string `toml:"rst" yaml:"rst"`
	Hz       int64  `toml:"hz" yaml:"hz"`
	Rotated  bool   `toml:"rotated" yaml:"rotated"`
	Contrast *int   `toml:"contrast" yaml:"contrast"`
	Invert   bool   `toml:"invert" yaml:"invert"`
}

type rawConfig struct {
	TickIntervalMS      int64      `toml:"tick_interval_ms" yaml:"tick_interval_ms"`
	SyncIntervalSeconds int64      `toml:"sync_interval_seconds" yaml:"sync_interval_seconds"`
	Precision           int        `toml:"illumination_precision" yaml:"illumination_precision"`
	SearchMaxDays       int        `toml:"search_max_days" yaml:"search_max_days"`
	Location            string     `toml:"location" yaml:"location"`
	Font                string     `toml:"font" yaml:"font"`
	Display             rawDisplay `toml:"display" yaml:"display"`
}

// Load reads a .toml, .yaml or .yml config, falling back to defaults when
// the file is missing. Empty values keep their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := decode(resolved, bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	raw.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, raw *rawConfig) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return toml.Unmarshal(data, raw)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, raw)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

func (r rawConfig) apply(cfg *Config) {
	if r.TickIntervalMS != 0 {
		cfg.TickInterval = time.Duration(r.TickIntervalMS) * time.Millisecond
	}
	if r.SyncIntervalSeconds != 0 {
		cfg.SyncInterval = time.Duration(r.SyncIntervalSeconds) * time.Second
	}
	if r.Precision != 0 {
		cfg.Precision = r.Precision
	}
	if r.SearchMaxDays != 0 {
		cfg.SearchMaxDays = r.SearchMaxDays
	}
	if v := strings.TrimSpace(r.Location); v != "" {
		cfg.Location = v
	}
	if v := strings.TrimSpace(r.Font); v != "" {
		cfg.Font = v
	}

	d := r.Display
	if d.Width != 0 {
		cfg.Display.Width = d.Width
	}
	if d.Height != 0 {
		cfg.Display.Height = d.Height
	}
	cfg.Display.SPI = strings.TrimSpace(d.SPI)
	if v := strings.TrimSpace(d.DC); v != "" {
		cfg.Display.DC = v
	}
	cfg.Display.RST = strings.TrimSpace(d.RST)
	if d.Hz != 0 {
		cfg.Display.Hz = d.Hz
	}
	cfg.Display.Rotated = d.Rotated
	if d.Contrast != nil {
		cfg.Display.Contrast = *d.Contrast
	}
	cfg.Display.Invert = d.Invert
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: tick interval %s", ErrInvalid, c.TickInterval))
	}
	if c.SyncInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: sync interval %s", ErrInvalid, c.SyncInterval))
	}
	if c.Precision != 1 && c.Precision != 2 {
		errs = append(errs, fmt.Errorf("%w: illumination precision %d, want 1 or 2", ErrInvalid, c.Precision))
	}
	if c.SearchMaxDays < 0 {
		errs = append(errs, fmt.Errorf("%w: search max days %d", ErrInvalid, c.SearchMaxDays))
	}
	if _, err := time.LoadLocation(c.Location); err != nil {
		errs = append(errs, fmt.Errorf("%w: location: %w", ErrInvalid, err))
	}
	if _, err := textsurface.FaceByName(c.Font); err != nil {
		errs = append(errs, fmt.Errorf("%w: font: %w", ErrInvalid, err))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: display size %dx%d", ErrInvalid, c.Display.Width, c.Display.Height))
	}
	if c.Display.Hz < 0 {
		errs = append(errs, fmt.Errorf("%w: spi frequency %d", ErrInvalid, c.Display.Hz))
	}
	if c.Display.Contrast < 0 || c.Display.Contrast > 255 {
		errs = append(errs, fmt.Errorf("%w: contrast %d not in [0, 255]", ErrInvalid, c.Display.Contrast))
	}
	return errors.Join(errs...)
}

// Scheduler converts c to the scheduler configuration.
func (c Config) Scheduler(logger *slog.Logger) (moonclock.Config, error) {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return moonclock.Config{}, fmt.Errorf("%w: location: %w", ErrInvalid, err)
	}
	return moonclock.Config{
		TickInterval: c.TickInterval,
		SyncInterval: c.SyncInterval,
		Precision:    c.Precision,
		Location:     loc,
		Search:       moonclock.FullMoonSearch{MaxDays: c.SearchMaxDays},
		Logger:       logger,
	}, nil
}

// Face returns the configured glyph face.
func (c Config) Face() (textsurface.Face, error) {
	return textsurface.FaceByName(c.Font)
}

// Opts returns the panel driver options; rst may be nil.
func (d Display) Opts(rst gpio.PinIO) *ssd1322.Opts {
	return &ssd1322.Opts{
		W:       d.Width,
		H:       d.Height,
		Rotated: d.Rotated,
		Hz:      physic.Frequency(d.Hz) * physic.Hertz,
		RST:     rst,
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// LogLevel maps a -log-level flag value to a slog level, info by default.
func LogLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
