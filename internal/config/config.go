// Package config loads Hana's optional project/user configuration file,
// following the same BurntSushi/toml-based loading approach the teacher
// codebase uses for its world manifests (internal/tqw).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Server holds the configuration for `hana serve` (SPEC_FULL.md §3.3).
type Server struct {
	BindAddr    string `toml:"bind_addr"`
	TokenSecret string `toml:"token_secret"`
	DBPath      string `toml:"db_path"`
}

// Config is the full set of configurable Hana options, loaded from
// ~/.hana/config.toml or the path named by $HANA_CONFIG.
type Config struct {
	// DefaultVersion is used to resolve `#version` when no @hana annotation
	// is present in the source. The opengl back end itself still falls back
	// to "410" if Config is never loaded at all.
	DefaultVersion string `toml:"default_version"`

	// Extensions is an allow-list of `use` module paths beyond
	// hana::raytracing that are accepted without a warning. An unrecognized
	// `use` path is never a hard error; the opengl back end only logs a
	// warning for a path that is not in this list.
	Extensions []string `toml:"extensions"`

	// CacheDir is the directory backing the compile cache (SPEC_FULL.md
	// §3.2).
	CacheDir string `toml:"cache_dir"`

	Server Server `toml:"server"`
}

// Default returns the configuration used when no config file is found.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DefaultVersion: "410",
		CacheDir:       filepath.Join(home, ".hana", "cache"),
		Server: Server{
			BindAddr: ":8080",
			DBPath:   filepath.Join(home, ".hana", "cache", "hana.db"),
		},
	}
}

// Path returns the configuration file Load will read: $HANA_CONFIG if set,
// otherwise ~/.hana/config.toml.
func Path() (string, error) {
	if p := os.Getenv("HANA_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".hana", "config.toml"), nil
}

// Load reads the configuration file at Path, layering it over Default. A
// missing file is not an error; it simply yields the defaults.
func Load() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.DefaultVersion == "" {
		cfg.DefaultVersion = "410"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = Default().CacheDir
	}
	if cfg.Server.BindAddr == "" {
		cfg.Server.BindAddr = ":8080"
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = filepath.Join(cfg.CacheDir, "hana.db")
	}

	return cfg, nil
}

// AllowsExtension reports whether path is either the built-in raytracing
// capability or present in the configured Extensions allow-list.
func (c Config) AllowsExtension(path string) bool {
	if path == "hana::raytracing" {
		return true
	}
	for _, p := range c.Extensions {
		if p == path {
			return true
		}
	}
	return false
}
