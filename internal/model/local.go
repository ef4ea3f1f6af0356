package model

import (
	"context"

	"github.com/kalambet/judicia/internal/config"
)

// Local is the seam for in-process inference from a model on disk. Predict
// returns a templated reply until a runtime is wired in; the contract does
// not change when it is.
type Local struct {
	path string
}

// NewLocal returns a Local backend for the model at path.
func NewLocal(path string) (*Local, error) {
	if path == "" {
		return nil, &config.MissingError{Scope: "local model backend", Keys: []string{"JUDICIA_LOCAL_MODEL_PATH"}}
	}
	return &Local{path: path}, nil
}

func (l *Local) Name() string { return "local" }

// Path returns the configured model location.
func (l *Local) Path() string { return l.path }

func (l *Local) Predict(_ context.Context, req Request) (Result, error) {
	return Result{Output: "Local model placeholder. Prompt = " + req.Prompt}, nil
}
