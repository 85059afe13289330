// Package config reads application settings from the environment
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ethanolivertroy/saa-tui/internal/llm"
)

const (
	DefaultDBPath    = "saa.db"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds application configuration
type Config struct {
	DBPath      string // SAA_DB_PATH
	CatalogPath string // SAA_CATALOG_PATH, empty for the embedded catalogue
	LogLevel    string // SAA_LOG_LEVEL: debug|info|warn|error
	LogFormat   string // SAA_LOG_FORMAT: text|json
	LLM         llm.Config
}

// FromEnv creates a Config from environment variables
func FromEnv() Config {
	cfg := Config{
		DBPath:      os.Getenv("SAA_DB_PATH"),
		CatalogPath: os.Getenv("SAA_CATALOG_PATH"),
		LogLevel:    strings.ToLower(os.Getenv("SAA_LOG_LEVEL")),
		LogFormat:   strings.ToLower(os.Getenv("SAA_LOG_FORMAT")),
		LLM:         llm.ConfigFromEnv(),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	return cfg
}

// Validate checks the non-LLM settings. LLM settings are validated only by
// the commands that need a model.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("SAA_DB_PATH must not be empty"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("SAA_LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name onto slog
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("SAA_LOG_LEVEL must be debug, info, warn or error, got %q", s)
}

// NewLogger builds a text or JSON slog logger writing to w
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
