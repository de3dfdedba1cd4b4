package cryptox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrGenerateSecret returns the secret stored at path, creating the file
// with a fresh random secret if it does not exist yet. An empty path yields
// an ephemeral secret that is lost on restart.
func LoadOrGenerateSecret(path string) (string, error) {
	if path == "" {
		return GenerateToken(TokenSize512)
	}

	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		secret := strings.TrimSpace(string(b))
		if secret == "" {
			return "", fmt.Errorf("cryptox: secret file %s is empty", path)
		}
		return secret, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	secret, err := GenerateToken(TokenSize512)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(secret), 0600); err != nil {
		return "", err
	}
	return secret, nil
}

// ResolveSecret prefers an explicit value and falls back to the file at path.
func ResolveSecret(value, path string) (string, error) {
	if value != "" {
		return value, nil
	}
	return LoadOrGenerateSecret(path)
}
