// Package model converts a free-text prompt into a normalized text reply.
// A single Backend is selected from configuration at process start and
// shared read-only by every request handler.
package model

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// predictTimeout bounds every outbound inference call.
const predictTimeout = 30 * time.Second

// Request is the input to a Backend.
type Request struct {
	Prompt string `json:"prompt"`
}

// Result is the uniform output contract of every Backend variant.
type Result struct {
	Output string `json:"output"`
}

// Backend is one strategy for producing a model reply.
type Backend interface {
	// Name identifies the variant ("dummy", "huggingface", "local", "http").
	Name() string
	// Predict returns the normalized reply for req or a *BackendError.
	Predict(ctx context.Context, req Request) (Result, error)
}

// Config carries the per-variant values needed to construct a Backend.
type Config struct {
	Backend      string
	HFAPIURL     string
	HFAPIToken   string
	LocalPath    string
	HTTPEndpoint string

	// Logger receives backend logs; nil uses slog.Default().
	Logger *slog.Logger
}

// New selects and constructs the configured Backend. It fails fast with a
// *config.MissingError when a value required by the chosen variant is absent.
// An empty or unknown backend name selects the Dummy variant.
func New(cfg Config) (Backend, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch name {
	case "huggingface":
		r, err := NewRemote(cfg.HFAPIURL, cfg.HFAPIToken)
		if err != nil {
			return nil, err
		}
		r.logger = logger.With("backend", r.Name())
		return r, nil
	case "local":
		return NewLocal(cfg.LocalPath)
	case "http":
		h, err := NewHTTPServer(cfg.HTTPEndpoint)
		if err != nil {
			return nil, err
		}
		h.logger = logger.With("backend", h.Name())
		return h, nil
	case "", "dummy":
		return Dummy{}, nil
	default:
		logger.Warn("unknown model backend, using dummy", "backend", cfg.Backend)
		return Dummy{}, nil
	}
}
