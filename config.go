package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config lives at $XDG_CONFIG_HOME/mindterm/config.yaml.
type Config struct {
	SaveDirectory string        `yaml:"save_directory,omitempty"`
	StartMenu     bool          `yaml:"start_menu"`
	Confirmations bool          `yaml:"confirmations"`
	LayoutDensity string        `yaml:"layout_density,omitempty"`
	StorePath     string        `yaml:"store_path,omitempty"`
	DraftTTL      time.Duration `yaml:"draft_ttl,omitempty"`
	UndoLimit     int           `yaml:"undo_limit,omitempty"` // 0 keeps everything
	Debug         bool          `yaml:"debug,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		StartMenu:     true,
		Confirmations: true,
		LayoutDensity: string(DensityCompact),
		StorePath:     filepath.Join(StateDir(), "mindterm.db"),
		DraftTTL:      24 * time.Hour,
	}
}

func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mindterm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mindterm")
}

func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "mindterm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "mindterm")
}

func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// LoadConfigFrom reads path on top of the defaults. A missing file is not
// an error.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if _, err := ParseDensity(cfg.LayoutDensity); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.UndoLimit < 0 {
		cfg.UndoLimit = 0
	}
	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = 24 * time.Hour
	}
	cfg.SaveDirectory = expandHome(cfg.SaveDirectory)
	cfg.StorePath = expandHome(cfg.StorePath)
	if cfg.SaveDirectory != "" && !filepath.IsAbs(cfg.SaveDirectory) {
		if abs, err := filepath.Abs(cfg.SaveDirectory); err == nil {
			cfg.SaveDirectory = abs
		}
	}
	return cfg, nil
}

// SessionOptions maps the config onto session construction.
func (c Config) SessionOptions() []SessionOption {
	opts := []SessionOption{
		WithUndoLimit(c.UndoLimit),
		WithDraftTTL(c.DraftTTL),
	}
	if d, err := ParseDensity(c.LayoutDensity); err == nil {
		opts = append(opts, WithDensity(d))
	}
	return opts
}

func (c Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0o755)
	return filepath.Join(c.SaveDirectory, filename)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
