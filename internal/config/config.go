package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Model    ModelConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins string
}

type StorageConfig struct {
	DataDir   string
	UploadDir string
}

// DatabaseConfig selects the relational store. Driver is "sqlite" (Path is a
// directory) or "postgres" (User, Password, Host, Port, Name).
type DatabaseConfig struct {
	Driver       string
	Path         string
	User         string
	Password     string
	Host         string
	HostFallback string
	Port         int
	Name         string
}

type ModelConfig struct {
	Backend      string
	HFAPIURL     string
	HFAPIToken   string
	LocalPath    string
	HTTPEndpoint string
}

type LogConfig struct {
	Level string
}

// Origins splits the comma separated CORS origin list.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8000,
			CORSOrigins: "*",
		},
		Storage: StorageConfig{
			DataDir:   dataDir,
			UploadDir: filepath.Join(dataDir, "uploads"),
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			Path:         dataDir,
			Host:         "localhost",
			HostFallback: "127.0.0.1",
			Port:         5432,
		},
		Model: ModelConfig{
			Backend: "dummy",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "judicia-data"
		}
	}
	return filepath.Join(dir, "judicia")
}

// MissingError reports required configuration values that are absent.
// The process must not start when Load or a backend constructor returns it.
type MissingError struct {
	Scope string
	Keys  []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required config for %s: %s", e.Scope, strings.Join(e.Keys, ", "))
}

// IsMissing reports whether err is (or wraps) a *MissingError.
func IsMissing(err error) bool {
	var me *MissingError
	return errors.As(err, &me)
}

// Load reads configuration from defaults, the JSON config file at
// $XDG_CONFIG_HOME/judicia/config.json, the secrets file, and JUDICIA_*
// environment variables. Environment variables win.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()), secretsFile{path: secretsFilePath()})
}

// secretStore abstracts the secrets file for testing.
type secretStore interface {
	Get(account string) (string, error)
}

func loadWith(b ConfigBackend, secrets secretStore) (Config, error) {
	cfg := defaults()

	// The upload dir and sqlite path follow the data dir unless set explicitly.
	defaultUploads, defaultDBPath := cfg.Storage.UploadDir, cfg.Database.Path
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	if cfg.Storage.UploadDir == defaultUploads {
		cfg.Storage.UploadDir = filepath.Join(cfg.Storage.DataDir, "uploads")
	}
	if cfg.Database.Path == defaultDBPath {
		cfg.Database.Path = cfg.Storage.DataDir
	}

	for _, s := range specs {
		if !s.secret || s.extract(cfg).(string) != "" {
			continue
		}
		if v, err := secrets.Get(s.key); err == nil && v != "" {
			s.apply(&cfg, v)
		}
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Model.Backend = strings.ToLower(strings.TrimSpace(cfg.Model.Backend))

	// The config is returned alongside a validation error so callers can
	// still display it.
	return cfg, cfg.Database.validate()
}

func (d DatabaseConfig) validate() error {
	switch d.Driver {
	case "sqlite":
		return nil
	case "postgres":
		var missing []string
		if d.User == "" {
			missing = append(missing, "JUDICIA_DB_USER")
		}
		if d.Password == "" {
			missing = append(missing, "JUDICIA_DB_PASSWORD")
		}
		if d.Name == "" {
			missing = append(missing, "JUDICIA_DB_NAME")
		}
		if len(missing) > 0 {
			return &MissingError{Scope: "postgres database", Keys: missing}
		}
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q (want sqlite or postgres)", d.Driver)
	}
}
