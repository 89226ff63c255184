package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/core"
)

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
app_name = "volume viewer"
backend = "headless"
max_allocation_size = 1048576

[window]
width = 640
height = 480
`))
	require.NoError(t, err)
	assert.Equal(t, "volume viewer", cfg.AppName)
	assert.Equal(t, BackendHeadless, cfg.Backend)
	assert.Equal(t, uint64(1<<20), cfg.MaxAllocationSize)
	assert.Equal(t, uint32(640), cfg.Window.Width)
	assert.Equal(t, uint32(480), cfg.Window.Height)
	// untouched keys keep their defaults
	assert.Equal(t, "assets/shaders", cfg.ShaderPath)
	assert.Equal(t, uint32(1024), cfg.MaxAppearances)
	assert.Equal(t, 100, cfg.Window.StartPosX)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown key", `shader_dir = "x"`},
		{"bad backend", `backend = "metal"`},
		{"bad level", `log_level = "loud"`},
		{"empty shader path", `shader_path = ""`},
		{"zero appearances", `max_appearances = 0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte(`backend = "metal"`))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Backend = BackendHeadless
	cfg.WatchShaders = true
	data, err := cfg.Encode()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "prism.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
