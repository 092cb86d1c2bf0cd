// Package config loads inkboard settings from ~/.inkboard.toml, an optional
// .env file and INKBOARD_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"inkboard/internal/animate"
	"inkboard/internal/board"
)

const fileName = ".inkboard.toml"

type Config struct {
	SaveDirectory string          `toml:"save_directory"`
	UndoLimit     int             `toml:"undo_limit"`
	Canvas        CanvasConfig    `toml:"canvas"`
	Animation     AnimationConfig `toml:"animation"`
	Server        ServerConfig    `toml:"server"`
	// ActionFile is watched for AI actions written by an external bridge.
	ActionFile string `toml:"action_file"`
}

type CanvasConfig struct {
	Width            float64 `toml:"width"`
	Height           float64 `toml:"height"`
	DevicePixelRatio float64 `toml:"device_pixel_ratio"`
}

type AnimationConfig struct {
	BudgetMS    int `toml:"budget_ms"`
	MinStrokeMS int `toml:"min_stroke_ms"`
	MaxStrokeMS int `toml:"max_stroke_ms"`
	PauseMS     int `toml:"pause_ms"`
	TickMS      int `toml:"tick_ms"`
}

type ServerConfig struct {
	Addr             string  `toml:"addr"`
	ActionsPerMinute float64 `toml:"actions_per_minute"`
	Burst            int     `toml:"burst"`
	MDNS             bool    `toml:"mdns"`
	MaxBoards        int     `toml:"max_boards"`
}

func Default() *Config {
	return &Config{
		UndoLimit: board.DefaultUndoLimit,
		Canvas: CanvasConfig{
			Width:            800,
			Height:           600,
			DevicePixelRatio: 1,
		},
		Animation: AnimationConfig{
			BudgetMS:    1400,
			MinStrokeMS: 220,
			MaxStrokeMS: 900,
			PauseMS:     140,
			TickMS:      16,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			ActionsPerMinute: 30,
			Burst:            5,
			MaxBoards:        256,
		},
	}
}

// Path is ~/.inkboard.toml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fileName), nil
}

// Load never fails on a missing file; defaults are used instead.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path, err := Path()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("INKBOARD_SAVE_DIR"); v != "" {
		c.SaveDirectory = v
	}
	if v := os.Getenv("INKBOARD_ACTION_FILE"); v != "" {
		c.ActionFile = v
	}
	if v := os.Getenv("INKBOARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("INKBOARD_MDNS"); v != "" {
		c.Server.MDNS = v == "1" || strings.EqualFold(v, "true")
	}
	if v, err := strconv.ParseFloat(os.Getenv("INKBOARD_ACTIONS_PER_MINUTE"), 64); err == nil {
		c.Server.ActionsPerMinute = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("INKBOARD_DPR"), 64); err == nil {
		c.Canvas.DevicePixelRatio = v
	}
	if v, err := strconv.Atoi(os.Getenv("INKBOARD_UNDO_LIMIT")); err == nil {
		c.UndoLimit = v
	}
	c.normalize()
}

// normalize expands the save directory and puts zero values back to their
// defaults.
func (c *Config) normalize() {
	d := Default()
	if c.UndoLimit <= 0 {
		c.UndoLimit = d.UndoLimit
	}
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = d.Canvas.Width
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = d.Canvas.Height
	}
	if c.Canvas.DevicePixelRatio <= 0 {
		c.Canvas.DevicePixelRatio = 1
	}
	if c.Animation.TickMS <= 0 {
		c.Animation.TickMS = d.Animation.TickMS
	}
	if c.Animation.MinStrokeMS > c.Animation.MaxStrokeMS {
		c.Animation.MinStrokeMS, c.Animation.MaxStrokeMS = c.Animation.MaxStrokeMS, c.Animation.MinStrokeMS
	}
	if c.Server.Burst <= 0 {
		c.Server.Burst = d.Server.Burst
	}
	if c.Server.MaxBoards <= 0 {
		c.Server.MaxBoards = d.Server.MaxBoards
	}
	c.SaveDirectory = expandPath(c.SaveDirectory)
	c.ActionFile = expandPath(c.ActionFile)
}

func expandPath(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return p
}

func (c *Config) Budget() animate.Budget {
	a := c.Animation
	if a.BudgetMS <= 0 {
		return animate.DefaultBudget()
	}
	return animate.Budget{
		Total: time.Duration(a.BudgetMS) * time.Millisecond,
		Min:   time.Duration(a.MinStrokeMS) * time.Millisecond,
		Max:   time.Duration(a.MaxStrokeMS) * time.Millisecond,
		Pause: time.Duration(a.PauseMS) * time.Millisecond,
	}
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Animation.TickMS) * time.Millisecond
}

// GetSavePath joins filename onto the save directory, creating it if needed.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
