package model

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kalambet/judicia/internal/config"
)

// Remote calls a hosted inference API (Hugging Face Inference style) and
// normalizes whatever shape it answers with.
type Remote struct {
	url        string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRemote returns a Remote backend. Both url and token are required.
func NewRemote(url, token string) (*Remote, error) {
	var missing []string
	if url == "" {
		missing = append(missing, "JUDICIA_HF_API_URL")
	}
	if token == "" {
		missing = append(missing, "JUDICIA_HF_API_TOKEN")
	}
	if len(missing) > 0 {
		return nil, &config.MissingError{Scope: "huggingface backend", Keys: missing}
	}
	return &Remote{
		url:        strings.TrimSpace(url),
		token:      token,
		httpClient: newHTTPClient(),
		logger:     slog.Default().With("backend", "huggingface"),
	}, nil
}

func (r *Remote) Name() string { return "huggingface" }

type remoteRequest struct {
	Inputs string `json:"inputs"`
}

func (r *Remote) Predict(ctx context.Context, req Request) (Result, error) {
	raw, status, err := postJSON(ctx, r.httpClient, r.logger, r.url, remoteRequest{Inputs: req.Prompt}, map[string]string{
		"Authorization": "Bearer " + r.token,
	})
	if err != nil {
		return Result{}, &BackendError{Backend: r.Name(), Status: status, Err: err}
	}
	if status >= 400 {
		return Result{}, &BackendError{Backend: r.Name(), Status: status, Detail: describeBody(raw)}
	}

	out, err := Normalize(ParsePayload(raw))
	if err != nil {
		var perr *PayloadError
		if errors.As(err, &perr) {
			return Result{}, &BackendError{Backend: r.Name(), Detail: stringify(perr.Value), Err: perr}
		}
		return Result{}, &BackendError{Backend: r.Name(), Err: err}
	}
	return Result{Output: out}, nil
}
