package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kalambet/judicia/internal/config"
	"github.com/kalambet/judicia/internal/model"
	"github.com/kalambet/judicia/internal/service"
	"github.com/kalambet/judicia/internal/storage"
	"github.com/kalambet/judicia/internal/uploads"
)

// newLogger returns a text slog logger on stderr at the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// buildService wires backend, store and upload directory from cfg. The
// returned close func releases the store.
func buildService(ctx context.Context, cfg config.Config, logger *slog.Logger) (*service.Service, func(), error) {
	backend, err := model.New(model.Config{
		Backend:      cfg.Model.Backend,
		HFAPIURL:     cfg.Model.HFAPIURL,
		HFAPIToken:   cfg.Model.HFAPIToken,
		LocalPath:    cfg.Model.LocalPath,
		HTTPEndpoint: cfg.Model.HTTPEndpoint,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("model backend selected", "backend", backend.Name())

	store, err := storage.Open(ctx, storage.Options{
		Driver:       cfg.Database.Driver,
		Path:         cfg.Database.Path,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Host:         cfg.Database.Host,
		HostFallback: cfg.Database.HostFallback,
		Port:         cfg.Database.Port,
		Name:         cfg.Database.Name,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	logger.Info("storage ready", "driver", store.Driver())

	files, err := uploads.New(cfg.Storage.UploadDir)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	svc := service.New(backend, store, files, logger)
	return svc, func() { store.Close() }, nil
}
