// Package config provides configuration loading and structs for the Veridoc server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug        bool               `yaml:"debug"`
	Server       ServerConfig       `yaml:"server"`
	Storage      StorageConfig      `yaml:"storage"`
	OCR          OCRConfig          `yaml:"ocr"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
	Fraud        FraudConfig        `yaml:"fraud"`
	Authenticity AuthenticityConfig `yaml:"authenticity"`
	Watch        WatchConfig        `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// StorageConfig holds the audit database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// OCRConfig holds Tesseract settings.
type OCRConfig struct {
	Language string `yaml:"language"`
	// Enhance runs the full preprocessing chain (denoise, threshold, sharpen,
	// upscale) before recognition instead of plain grayscale equalization.
	Enhance bool `yaml:"enhance"`
}

// PipelineConfig holds text acquisition settings.
type PipelineConfig struct {
	// FastPathMinChars is the embedded-text length above which a PDF page
	// skips OCR entirely.
	FastPathMinChars int     `yaml:"fast_path_min_chars"`
	RasterDPI        float64 `yaml:"raster_dpi"`
	// MaxWorkers bounds the per-document page OCR pool. The effective pool
	// size is min(MaxWorkers, available parallelism).
	MaxWorkers int `yaml:"max_workers"`
}

// FraudConfig holds fraud engine scoring constants.
type FraudConfig struct {
	// ManipulationScore is added when the authenticity service reports
	// manipulation. The source history carried both 50 and 60; 50 is the
	// canonical default.
	ManipulationScore int `yaml:"manipulation_score"`
}

// AuthenticityConfig holds the external image authenticity service settings.
// User and Secret are read from the environment (AUTHENTICITY_API_USER,
// AUTHENTICITY_API_SECRET) so credentials stay out of config files.
type AuthenticityConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WatchConfig holds inbox directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
