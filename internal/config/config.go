package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/shapedtime/torrentmap/internal/playback"
	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

// Config represents the application configuration
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	Index    IndexConfig    `yaml:"index"`
	Watch    WatchConfig    `yaml:"watch"`
	Playback PlaybackConfig `yaml:"playback"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Debug bool   `yaml:"debug"`
	Path  string `yaml:"path"`

	MaxSize    int `yaml:"max_size"` // MB
	MaxBackups int `yaml:"max_backups"`
	MaxAge     int `yaml:"max_age"` // days
}

// Store backends
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type ServerConfig struct {
	HTTPPort int    `yaml:"http_port"`
	Host     string `yaml:"host"`
}

type IndexConfig struct {
	// Extensions keeps only files with one of these suffixes. Empty keeps
	// all; "video" stands for the common video containers.
	Extensions []string `yaml:"extensions"`
	// Output is the directory index files are written to by the watcher.
	Output string `yaml:"output"`
	// Workers bounds concurrent builds of a directory.
	Workers int `yaml:"workers"`
}

type WatchConfig struct {
	Dir      string `yaml:"dir"`
	Debounce int    `yaml:"debounce"` // milliseconds
}

type PlaybackConfig struct {
	Plugin string `yaml:"plugin"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 2,
			MaxAge:     30,
		},
		Store: StoreConfig{
			Backend: BackendBadger,
			Path:    "./data/index",
		},
		Server: ServerConfig{
			HTTPPort: 4545,
			Host:     "0.0.0.0",
		},
		Index: IndexConfig{
			Extensions: []string{".avi"},
			Output:     "./data/maps",
			Workers:    4,
		},
		Watch: WatchConfig{
			Dir:      "./data/torrents",
			Debounce: 500,
		},
		Playback: PlaybackConfig{
			Plugin: playback.DefaultPlugin,
		},
	}
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that have no usable zero value.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendBadger, BackendSQLite:
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path: must not be empty")
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port: %d out of range", c.Server.HTTPPort)
	}
	if c.Index.Workers < 1 {
		c.Index.Workers = 1
	}
	c.Index.Extensions = torrentfile.ExpandExtensions(c.Index.Extensions)
	return nil
}

// EnsureDirectories creates required directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Index.Output,
		c.Watch.Dir,
	}
	switch c.Store.Backend {
	case BackendSQLite:
		dirs = append(dirs, filepath.Dir(c.Store.Path))
	default:
		dirs = append(dirs, c.Store.Path)
	}
	if c.Log.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Log.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}
