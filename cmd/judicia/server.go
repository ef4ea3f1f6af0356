package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/judicia/internal/api"
	"github.com/kalambet/judicia/internal/config"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the judicia HTTP server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running judicia server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show judicia server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "judicia.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "judicia version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(localURL(cfg) + "/health"); err == nil {
		resp.Body.Close()
		warning.printf("judicia is already running on %s", addr)
		return fmt.Errorf("server already running on %s", addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, closeStore, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	pidPath := pidFilePath(cfg.Storage.DataDir)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	srv := &http.Server{
		Addr: addr,
		Handler: api.NewHandler(api.Deps{
			Service:     svc,
			Logger:      logger,
			CORSOrigins: cfg.Server.Origins(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("judicia listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		failure.printf("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		failure.printf("judicia is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		failure.printf("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		failure.printf("could not stop judicia (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	success.printf("Sent stop signal to judicia (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		failure.printf("config error: %v", err)
		return nil
	}

	base := localURL(cfg)
	if serverURL != "" {
		base = strings.TrimRight(serverURL, "/")
	}
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(base + "/health")
	switch {
	case err != nil:
		statusLine("Server", "stopped")
	case resp.StatusCode == http.StatusOK:
		resp.Body.Close()
		statusLine("Server", "running (%s)", base)
	default:
		resp.Body.Close()
		statusLine("Server", "unhealthy (HTTP %d)", resp.StatusCode)
	}

	statusLine("Model backend", "%s", cfg.Model.Backend)
	statusLine("Database", "%s", cfg.Database.Driver)
	statusLine("Upload dir", "%s", cfg.Storage.UploadDir)
	if pid, err := readPIDFile(pidFilePath(cfg.Storage.DataDir)); err == nil {
		statusLine("PID", "%d", pid)
	}
	return nil
}

// localURL is the base URL a local client should use to reach the server.
func localURL(cfg config.Config) string {
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port))
}
