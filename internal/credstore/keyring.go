// Package credstore persists RGS session credentials per environment
// (dev, staging, prod) in the OS keychain, with a file fallback for headless
// machines. Session IDs are bearer credentials and never belong in shell
// history or config files.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keySessionID  = "sessionid"
	keyServerHost = "serverhost"
)

// ErrNotFound is returned when no credential is stored for an environment.
var ErrNotFound = keyring.ErrNotFound

// KeyringStore wraps the OS keychain with an optional file fallback.
// Fallback is intended for environments where no system keyring is available.
type KeyringStore struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewKeyringStore creates a keyring wrapper.
func NewKeyringStore(serviceName, fallbackPath string) *KeyringStore {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "rgs-client"
	}
	return &KeyringStore{
		service:      serviceName,
		fallbackPath: fallbackPath,
	}
}

func (k *KeyringStore) key(env, part string) string {
	return fmt.Sprintf("%s/%s", env, part)
}

func (k *KeyringStore) SetSessionID(env, value string) error {
	return k.setSecret(env, keySessionID, value)
}

func (k *KeyringStore) GetSessionID(env string) (string, error) {
	return k.getSecret(env, keySessionID)
}

func (k *KeyringStore) SetServerHost(env, value string) error {
	return k.setSecret(env, keyServerHost, value)
}

func (k *KeyringStore) GetServerHost(env string) (string, error) {
	return k.getSecret(env, keyServerHost)
}

// DeleteAll removes all stored credentials for the given environment.
func (k *KeyringStore) DeleteAll(env string) error {
	var errs []error
	for _, part := range []string{keySessionID, keyServerHost} {
		if err := keyring.Delete(k.service, k.key(env, part)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return k.deleteFallbackEnv(env)
	}
	// Try fallback cleanup even if keyring delete failed.
	_ = k.deleteFallbackEnv(env)
	return fmt.Errorf("credstore: keyring delete failed: %v", errs[0])
}

func (k *KeyringStore) setSecret(env, part, value string) error {
	env = strings.TrimSpace(env)
	if env == "" {
		return fmt.Errorf("credstore: environment name is required")
	}

	if err := keyring.Set(k.service, k.key(env, part), value); err == nil {
		return nil
	} else if !isKeyringUnavailable(err) {
		return fmt.Errorf("credstore: keyring set %s: %w", part, err)
	}

	return k.setFallback(env, part, value)
}

func (k *KeyringStore) getSecret(env, part string) (string, error) {
	env = strings.TrimSpace(env)
	if env == "" {
		return "", fmt.Errorf("credstore: environment name is required")
	}

	val, err := keyring.Get(k.service, k.key(env, part))
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("credstore: keyring get %s: %w", part, err)
	}

	fallback, ferr := k.getFallback(env, part)
	if ferr == nil {
		return fallback, nil
	}

	if errors.Is(err, keyring.ErrNotFound) {
		return "", keyring.ErrNotFound
	}
	return "", ferr
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "the specified item could not be found in the keychain") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

type fallbackSecrets map[string]map[string]string

func (k *KeyringStore) setFallback(env, part, value string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return fmt.Errorf("credstore: keyring unavailable and no fallback path configured")
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return err
	}
	if _, ok := data[env]; !ok {
		data[env] = map[string]string{}
	}
	data[env][part] = value
	return k.writeFallbackUnlocked(data)
}

func (k *KeyringStore) getFallback(env, part string) (string, error) {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return "", fmt.Errorf("credstore: fallback path not configured")
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	parts, ok := data[env]
	if !ok {
		return "", keyring.ErrNotFound
	}
	val, ok := parts[part]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return val, nil
}

func (k *KeyringStore) deleteFallbackEnv(env string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.readFallbackUnlocked()
	if err != nil {
		return err
	}
	delete(data, env)
	return k.writeFallbackUnlocked(data)
}

func (k *KeyringStore) readFallbackUnlocked() (fallbackSecrets, error) {
	out := fallbackSecrets{}
	raw, err := os.ReadFile(k.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("credstore: read fallback secrets: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("credstore: decode fallback secrets: %w", err)
	}
	return out, nil
}

func (k *KeyringStore) writeFallbackUnlocked(data fallbackSecrets) error {
	dir := filepath.Dir(k.fallbackPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("credstore: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("credstore: encode fallback secrets: %w", err)
	}
	if err := os.WriteFile(k.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("credstore: write fallback secrets: %w", err)
	}
	return nil
}
