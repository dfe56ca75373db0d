package server

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvAddr      = "HELIX_ADDR"
	EnvMaxUpload = "HELIX_MAX_UPLOAD"
	EnvMaxDim    = "HELIX_MAX_DIM"
	EnvLogLevel  = "HELIX_LOG_LEVEL"
)

// Config holds the HTTP API settings.
type Config struct {
	Addr string
	// MaxUploadBytes bounds the request body.
	MaxUploadBytes int64
	// MaxDimension downscales plaintext uploads whose width or height exceeds it and
	// rejects larger ciphertext uploads. 0 disables.
	MaxDimension int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogLevel     string
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8000",
		MaxUploadBytes: 32 << 20,
		MaxDimension:   4096,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   2 * time.Minute,
		LogLevel:       "info",
	}
}

// ApplyEnv overrides fields from environment variables looked up with getenv.
// Unset or empty variables leave the field unchanged.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := getenv(EnvMaxUpload); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxUpload, err)
		}
		c.MaxUploadBytes = n
	}
	if v := getenv(EnvMaxDim); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDim, err)
		}
		c.MaxDimension = n
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return c.Validate()
}

// Validate checks that the limits are usable.
func (c *Config) Validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxDimension < 0 {
		return fmt.Errorf("max dimension must not be negative, got %d", c.MaxDimension)
	}
	return nil
}
