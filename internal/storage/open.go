package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const dialTimeout = 10 * time.Second

// Options selects and locates the backing database.
type Options struct {
	Driver string // "sqlite" (default) or "postgres"

	// SQLite: directory holding judicia.db, or ":memory:".
	Path string

	// PostgreSQL connection parameters.
	User         string
	Password     string
	Host         string
	HostFallback string
	Port         int
	Name         string
}

// Open connects to the configured database and ensures the schema exists.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch opts.Driver {
	case "", "sqlite":
		return OpenSQLite(opts.Path)
	case "postgres":
		return openPostgres(ctx, opts, logger)
	default:
		return nil, wrap("open", fmt.Errorf("unsupported driver %q", opts.Driver))
	}
}

// OpenSQLite opens (or creates) a SQLite database in dataDir.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func OpenSQLite(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, wrap("open", fmt.Errorf("creating data directory: %w", err))
		}
		dsn = filepath.Join(dataDir, "judicia.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrap("open", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrap("open", fmt.Errorf("pinging database: %w", err))
	}

	// A single connection keeps ":memory:" databases shared and avoids
	// "database is locked" on files.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, wrap("open", fmt.Errorf("setting busy timeout: %w", err))
	}
	if dsn != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, wrap("open", fmt.Errorf("setting journal mode: %w", err))
		}
	}

	s := &Store{db: db, dialect: dialectSQLite}
	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	host := resolveHost(opts.Host, opts.HostFallback, logger)
	dsn := postgresDSN(opts, host)

	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, wrap("open", err)
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "judicia"

	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dctx, pc)
	if err != nil {
		return nil, wrap("open", err)
	}
	if err := pool.Ping(dctx); err != nil {
		pool.Close()
		return nil, wrap("open", fmt.Errorf("pinging database: %w", err))
	}
	logger.Info("connected to database", "driver", "postgres", "host", host, "name", opts.Name)

	s := &Store{db: stdlib.OpenDBFromPool(pool), dialect: dialectPostgres, onClose: pool.Close}
	if err := s.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// postgresDSN builds a connection URL; the password never appears in logs.
func postgresDSN(opts Options, host string) string {
	port := opts.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(opts.User, opts.Password),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + opts.Name,
	}
	return u.String()
}

var lookupHost = net.LookupHost

// resolveHost returns host when it resolves, otherwise the fallback.
func resolveHost(host, fallback string, logger *slog.Logger) string {
	if host == "" {
		return fallback
	}
	if fallback == "" || net.ParseIP(host) != nil {
		return host
	}
	if _, err := lookupHost(host); err != nil {
		logger.Warn("database host does not resolve, using fallback",
			"host", host, "fallback", fallback, "error", err)
		return fallback
	}
	return host
}
