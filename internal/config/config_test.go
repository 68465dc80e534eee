package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	t.Setenv("HANA_CONFIG", filepath.Join(dir, "does-not-exist.toml"))

	cfg, err := Load()
	assert.NoError(err)
	assert.Equal("410", cfg.DefaultVersion)
	assert.NotEmpty(cfg.CacheDir)
}

func TestLoad_ParsesTOML(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
default_version = "460"
extensions = ["hana::compute_extra"]
cache_dir = "/tmp/hana-cache"

[server]
bind_addr = ":9090"
token_secret = "shh"
db_path = "/tmp/hana-cache/hana.db"
`
	assert.NoError(os.WriteFile(path, []byte(contents), 0644))
	t.Setenv("HANA_CONFIG", path)

	cfg, err := Load()
	assert.NoError(err)
	assert.Equal("460", cfg.DefaultVersion)
	assert.Equal([]string{"hana::compute_extra"}, cfg.Extensions)
	assert.Equal("/tmp/hana-cache", cfg.CacheDir)
	assert.Equal(":9090", cfg.Server.BindAddr)
	assert.Equal("shh", cfg.Server.TokenSecret)
}

func TestConfig_AllowsExtension(t *testing.T) {
	assert := assert.New(t)

	cfg := Config{Extensions: []string{"hana::foo"}}
	assert.True(cfg.AllowsExtension("hana::raytracing"))
	assert.True(cfg.AllowsExtension("hana::foo"))
	assert.False(cfg.AllowsExtension("hana::bar"))
}
