package model

import "context"

// Dummy echoes the prompt. It performs no I/O and never fails.
type Dummy struct{}

func (Dummy) Name() string { return "dummy" }

func (Dummy) Predict(_ context.Context, req Request) (Result, error) {
	return Result{Output: "Dummy response: " + req.Prompt}, nil
}
