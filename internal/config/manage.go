package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const secretMask = "********"

// KeyInfo is one row of `judicia config show`.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
	Secret bool
}

// choices lists the accepted values of enumerated keys. Values are matched
// case-insensitively and stored lower-cased.
var choices = map[string][]string{
	"database.driver": {"sqlite", "postgres"},
	"model.backend":   {"dummy", "huggingface", "local", "http"},
	"log.level":       {"debug", "info", "warn", "error"},
}

// portKeys must hold a TCP port.
var portKeys = []string{"server.port", "database.port"}

// ShowAll lists every key with its effective value in cfg. Set secrets are
// masked; unset ones stay empty so the operator can tell them apart.
func ShowAll(cfg Config) []KeyInfo {
	out := make([]KeyInfo, 0, len(specs))
	for _, s := range specs {
		v := fmt.Sprint(s.extract(cfg))
		if s.secret && v != "" {
			v = secretMask
		}
		out = append(out, KeyInfo{Key: s.key, EnvVar: s.env, Value: v, Secret: s.secret})
	}
	return out
}

// SetKey validates value for key and persists it to the config file.
// Secrets are refused: they belong in the environment or the secrets file.
func SetKey(key, value string) error {
	return setKey(newFileBackend(configFilePath()), key, value)
}

func setKey(b ConfigBackend, key, value string) error {
	s, ok := lookupSpec(key)
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}
	if s.secret {
		return fmt.Errorf("cannot set secret %q via config; use environment variable %s", key, s.env)
	}

	v, err := parseValue(s, value)
	if err != nil {
		return err
	}
	if s.typ == kInt {
		return b.SetInt(key, v.(int))
	}
	return b.SetString(key, v.(string))
}

// ValidKeys returns the keys `judicia config set` accepts.
func ValidKeys() []string {
	var keys []string
	for _, s := range specs {
		if !s.secret {
			keys = append(keys, s.key)
		}
	}
	return keys
}

// Choices returns the accepted values of key, or nil when any value goes.
func Choices(key string) []string {
	return slices.Clone(choices[key])
}

func lookupSpec(key string) (keySpec, bool) {
	i := slices.IndexFunc(specs, func(s keySpec) bool { return s.key == key })
	if i < 0 {
		return keySpec{}, false
	}
	return specs[i], true
}

// parseValue converts raw to the key's type and checks it against the
// key's accepted range or choices.
func parseValue(s keySpec, raw string) (any, error) {
	raw = strings.TrimSpace(raw)

	if s.typ == kInt {
		i, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value for %s: %w", s.key, err)
		}
		if slices.Contains(portKeys, s.key) && (i < 1 || i > 65535) {
			return nil, fmt.Errorf("%s must be between 1 and 65535, got %d", s.key, i)
		}
		return i, nil
	}

	if c, ok := choices[s.key]; ok {
		v := strings.ToLower(raw)
		if !slices.Contains(c, v) {
			return nil, fmt.Errorf("invalid value %q for %s (want %s)", raw, s.key, strings.Join(c, ", "))
		}
		return v, nil
	}
	return raw, nil
}
