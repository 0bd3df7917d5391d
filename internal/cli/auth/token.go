package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "gros-cli"

// TokenStore defines the interface for JWT token storage operations.
// This allows us to mock the keyring in tests.
type TokenStore interface {
	SaveToken(serverURL, token string) error
	LoadToken(serverURL string) (string, error)
	DeleteToken(serverURL string) error
}

// DefaultTokens stores tokens in the OS keychain/credential manager
var DefaultTokens TokenStore = &keyringTokenStore{}

type keyringTokenStore struct{}

func keyringKey(serverURL string) string {
	return fmt.Sprintf("jwt-%s", serverURL)
}

func (k *keyringTokenStore) SaveToken(serverURL, token string) error {
	if err := keyring.Set(keyringService, keyringKey(serverURL), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k *keyringTokenStore) LoadToken(serverURL string) (string, error) {
	token, err := keyring.Get(keyringService, keyringKey(serverURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("not authenticated. Please run 'gros login' first")
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (k *keyringTokenStore) DeleteToken(serverURL string) error {
	if err := keyring.Delete(keyringService, keyringKey(serverURL)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
