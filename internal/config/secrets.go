package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// secretsFile reads credentials from $XDG_DATA_HOME/judicia/secrets.json, a
// flat {"<config key>": "<value>"} object with 0600 permissions. It is only
// consulted for secret keys left empty by the environment.
type secretsFile struct {
	path string
}

func secretsFilePath() string {
	return filepath.Join(defaultDataDir(), "secrets.json")
}

func (s secretsFile) Get(account string) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("secrets file not available: %w", err)
	}
	var secrets map[string]string
	if err := json.Unmarshal(data, &secrets); err != nil {
		return "", fmt.Errorf("parsing secrets file: %w", err)
	}
	val, ok := secrets[account]
	if !ok {
		return "", fmt.Errorf("secret %q not found", account)
	}
	return val, nil
}
