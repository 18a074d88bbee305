package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "irc.ppy.sh:6667", cfg.Server)
	assert.Equal(t, "#english", cfg.DefaultChannel)
	assert.NotEmpty(t, cfg.DataDir)
	assert.NotEmpty(t, cfg.CacheDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("IRC4OSU_SERVER", "localhost:6667")
	t.Setenv("IRC4OSU_DEFAULT_CHANNEL", "#osu")
	t.Setenv("IRC4OSU_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6667", cfg.Server)
	assert.Equal(t, "#osu", cfg.DefaultChannel)
}
