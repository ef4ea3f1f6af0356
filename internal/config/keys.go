package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "JUDICIA_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "JUDICIA_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.cors_origins", typ: kString, env: "JUDICIA_CORS_ORIGINS",
		apply:   func(cfg *Config, v any) { cfg.Server.CORSOrigins = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.CORSOrigins },
	},
	{
		key: "storage.data_dir", typ: kString, env: "JUDICIA_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.upload_dir", typ: kString, env: "JUDICIA_UPLOAD_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.UploadDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.UploadDir },
	},
	{
		key: "database.driver", typ: kString, env: "JUDICIA_DB_DRIVER",
		apply:   func(cfg *Config, v any) { cfg.Database.Driver = v.(string) },
		extract: func(cfg Config) any { return cfg.Database.Driver },
	},
	{
		key: "database.path", typ: kString, env: "JUDICIA_DB_PATH",
		apply:   func(cfg *Config, v any) { cfg.Database.Path = v.(string) },
		extract: func(cfg Config) any { return cfg.Database.Path },
	},
	{
		key: "database.user", typ: kString, env: "JUDICIA_DB_USER",
		apply:   func(cfg *Config, v any) { cfg.Database.User = v.(string) },
		extract: func(cfg Config) any { return cfg.Database.User },
	},
	{
		key: "database.password", typ: kString, env: "JUDICIA_DB_PASSWORD",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Database.Password = v.(string) },
		extract: func(cfg Config) any { return cfg.Database.Password },
	},
	{
		key: "database.host", typ: kString, env: "JUDICIA_DB_HOST",
		apply:   func(cfg *Config, v any) { cfg.Database.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Database.Host },
	},
	{
		key: "database.host_fallback", typ: kString, env: "JUDICIA_DB_HOST_FALLBACK",
		apply:   func(cfg *Config, v any) { cfg.Database.HostFallback = v.(string) },
		extract: func(cfg Config) any { return cfg.Database.HostFallback },
	},
	{
		key: "database.port", typ: kInt, env: "JUDICIA_DB_PORT",
		apply:   func(cfg *Config, v any) { cfg.Database.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Database.Port },
	},
	{
		key: "database.name", typ: kString, env: "JUDICIA_DB_NAME",
		apply:   func(cfg *Config, v any) { cfg.Database.Name = v.(string) },
		extract: func(cfg Config) any { return cfg.Database.Name },
	},
	{
		key: "model.backend", typ: kString, env: "JUDICIA_MODEL_BACKEND",
		apply:   func(cfg *Config, v any) { cfg.Model.Backend = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.Backend },
	},
	{
		key: "model.hf_api_url", typ: kString, env: "JUDICIA_HF_API_URL",
		apply:   func(cfg *Config, v any) { cfg.Model.HFAPIURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.HFAPIURL },
	},
	{
		key: "model.hf_api_token", typ: kString, env: "JUDICIA_HF_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Model.HFAPIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.HFAPIToken },
	},
	{
		key: "model.local_path", typ: kString, env: "JUDICIA_LOCAL_MODEL_PATH",
		apply:   func(cfg *Config, v any) { cfg.Model.LocalPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.LocalPath },
	},
	{
		key: "model.http_endpoint", typ: kString, env: "JUDICIA_MODEL_HTTP_ENDPOINT",
		apply:   func(cfg *Config, v any) { cfg.Model.HTTPEndpoint = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.HTTPEndpoint },
	},
	{
		key: "log.level", typ: kString, env: "JUDICIA_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
