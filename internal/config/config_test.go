package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkboard/internal/animate"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inkboard.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultBudgetMatchesAnimator(t *testing.T) {
	assert.Equal(t, animate.DefaultBudget(), Default().Budget())
	assert.Equal(t, 16*time.Millisecond, Default().TickInterval())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, `
save_directory = "`+filepath.ToSlash(dir)+`"
undo_limit = 10

[canvas]
width = 640
device_pixel_ratio = 2

[animation]
budget_ms = 2000
min_stroke_ms = 100
max_stroke_ms = 500
pause_ms = 50

[server]
addr = ":9999"
mdns = true
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.UndoLimit)
	assert.Equal(t, 640.0, cfg.Canvas.Width)
	assert.Equal(t, 600.0, cfg.Canvas.Height, "unset keys keep their defaults")
	assert.Equal(t, 2.0, cfg.Canvas.DevicePixelRatio)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.True(t, cfg.Server.MDNS)
	assert.Equal(t, 5, cfg.Server.Burst)

	b := cfg.Budget()
	assert.Equal(t, 2*time.Second, b.Total)
	assert.Equal(t, 100*time.Millisecond, b.Min)
	assert.Equal(t, 500*time.Millisecond, b.Max)
	assert.Equal(t, 50*time.Millisecond, b.Pause)
}

func TestLoadFileRejectsBadTOML(t *testing.T) {
	_, err := LoadFile(writeFile(t, "undo_limit = ["))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INKBOARD_ADDR", "127.0.0.1:7000")
	t.Setenv("INKBOARD_MDNS", "1")
	t.Setenv("INKBOARD_UNDO_LIMIT", "7")
	t.Setenv("INKBOARD_DPR", "3")
	t.Setenv("INKBOARD_ACTIONS_PER_MINUTE", "12.5")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.True(t, cfg.Server.MDNS)
	assert.Equal(t, 7, cfg.UndoLimit)
	assert.Equal(t, 3.0, cfg.Canvas.DevicePixelRatio)
	assert.Equal(t, 12.5, cfg.Server.ActionsPerMinute)
}

func TestNormalizeFixesBadValues(t *testing.T) {
	cfg := &Config{}
	cfg.Animation.MinStrokeMS = 900
	cfg.Animation.MaxStrokeMS = 200
	cfg.normalize()

	assert.Equal(t, Default().UndoLimit, cfg.UndoLimit)
	assert.Equal(t, 1.0, cfg.Canvas.DevicePixelRatio)
	assert.Equal(t, 200, cfg.Animation.MinStrokeMS)
	assert.Equal(t, 900, cfg.Animation.MaxStrokeMS)
}

func TestGetSavePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "board.png", cfg.GetSavePath("board.png"))

	dir := filepath.Join(t.TempDir(), "nested")
	cfg.SaveDirectory = dir
	assert.Equal(t, filepath.Join(dir, "board.png"), cfg.GetSavePath("board.png"))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
