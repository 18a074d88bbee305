// Package config loads client configuration from an optional TOML file
// with environment variable overrides.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// Server is the IRC server address (host:port).
	Server string `toml:"server"`
	// DefaultChannel is joined automatically once the session is ready.
	DefaultChannel string `toml:"default_channel"`
	// APIBase is the base URL of the user lookup endpoint.
	APIBase string `toml:"api_base"`
	// AvatarBase is the base URL avatars are fetched from.
	AvatarBase string `toml:"avatar_base"`
	// DataDir holds the key-value store database.
	DataDir string `toml:"data_dir"`
	// CacheDir holds downloaded avatar files.
	CacheDir string `toml:"cache_dir"`
}

// Load returns the configuration assembled from defaults, the config file
// (if present) and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := defaults()

	path := configPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if addr := os.Getenv("IRC4OSU_SERVER"); addr != "" {
		cfg.Server = addr
	}
	if ch := os.Getenv("IRC4OSU_DEFAULT_CHANNEL"); ch != "" {
		cfg.DefaultChannel = ch
	}
	if api := os.Getenv("IRC4OSU_API_BASE"); api != "" {
		cfg.APIBase = api
	}
	if avatars := os.Getenv("IRC4OSU_AVATAR_BASE"); avatars != "" {
		cfg.AvatarBase = avatars
	}
	if dir := os.Getenv("IRC4OSU_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if dir := os.Getenv("IRC4OSU_CACHE_DIR"); dir != "" {
		cfg.CacheDir = dir
	}

	return cfg, nil
}

func defaults() *Config {
	base := baseDir()
	return &Config{
		Server:         "irc.ppy.sh:6667",
		DefaultChannel: "#english",
		APIBase:        "https://irc4osu.example.com/api",
		AvatarBase:     "https://a.ppy.sh",
		DataDir:        base,
		CacheDir:       filepath.Join(base, "avatars"),
	}
}

func configPath() string {
	return filepath.Join(baseDir(), "config.toml")
}

func baseDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "irc4osu")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".irc4osu")
}
