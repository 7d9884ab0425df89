// Package config resolves the command's settings from defaults, a config
// file, LOG_FIND_DATE_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minuteman3/log-find-date/internal/logging"
	"github.com/minuteman3/log-find-date/internal/logsearch"
	"github.com/minuteman3/log-find-date/internal/source"
)

const (
	// DefaultInput is the log file searched when none is configured.
	DefaultInput = "logs_2024.log"

	// DefaultOutputDir is the directory artifacts are written to when no
	// explicit output path is configured.
	DefaultOutputDir = "output"

	// DefaultDebounce is how long watch mode waits for writes to settle.
	DefaultDebounce = 250 * time.Millisecond
)

// ErrInvalid is matched by every error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings for one run of the command.
type Config struct {
	Input     string
	OutputDir string
	Output    string
	ChunkSize int
	StripCR   bool

	LogLevel  string
	LogFormat string

	Watch    bool
	Debounce time.Duration

	Telemetry bool

	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
	S3AccessKey string
	S3SecretKey string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Input:     DefaultInput,
		OutputDir: DefaultOutputDir,
		ChunkSize: logsearch.DefaultChunkSize,
		LogLevel:  "info",
		LogFormat: logging.FormatConsole,
		Debounce:  DefaultDebounce,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Input == "" {
		return invalid("input is required")
	}
	if c.Output == "" && c.OutputDir == "" {
		return invalid("output-dir is required when output is not set")
	}
	if c.ChunkSize <= 0 {
		return invalid("chunk-size must be positive")
	}
	if c.Debounce <= 0 {
		return invalid("debounce must be positive")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return invalid("log-level: %v", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return invalid("log-format must be %s or %s", logging.FormatConsole, logging.FormatJSON)
	}
	if c.Watch && source.IsRemote(c.Input) {
		return invalid("watch is only supported for local files")
	}
	return nil
}

// SourceOptions returns the settings used to reach remote log files.
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		PathStyle: c.S3PathStyle,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	}
}

// Masked returns a copy of c that is safe to log.
func (c Config) Masked() Config {
	if c.S3SecretKey != "" {
		c.S3SecretKey = "*****"
	}
	return c
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
