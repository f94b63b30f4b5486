package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RuntimeService is the task service routed to the socket.io runtime when a
// runtime URL is configured. Every other service runs in-process.
const RuntimeService = "runtime"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string // hcl files or directories, merged over the built-ins
	ListenAddr    string

	LogFormat string
	LogLevel  slog.Level

	Workers         int // 0 sizes the local pool and the limit from the dispatchers
	StrictPriority  bool
	ShortCircuit    bool
	LenientHooks    bool
	DispatchTimeout time.Duration

	RuntimeURL       string
	RuntimeNamespace string
	RuntimeWorkers   int

	DatabaseURL string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ListenAddr == "" {
		return nil, errors.New("ListenAddr is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.DispatchTimeout < 0 {
		return nil, fmt.Errorf("dispatch timeout must not be negative, got %s", cfg.DispatchTimeout)
	}
	if cfg.RuntimeURL == "" && cfg.RuntimeWorkers > 0 {
		return nil, errors.New("runtime workers given without a runtime URL")
	}
	if cfg.RuntimeWorkers < 0 {
		return nil, fmt.Errorf("runtime workers must not be negative, got %d", cfg.RuntimeWorkers)
	}

	return &cfg, nil
}
