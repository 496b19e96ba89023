package keyring

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/guardian/internal/constants"
)

var (
	// ErrNotFound is returned when no token is stored in the keyring
	ErrNotFound = errors.New("token not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetToken retrieves the API bearer token from the OS keyring.
// Returns ErrNotFound if no token is stored.
func GetToken() (string, error) {
	token, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return token, nil
}

// SetToken stores the API bearer token in the OS keyring.
func SetToken(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// DeleteToken removes the API bearer token from the OS keyring.
func DeleteToken() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// TokenSource resolves the bearer token for API calls. An explicit token
// (flag or environment) wins over the keyring until a login replaces it or a
// logout drops it. It is safe for concurrent use.
type TokenSource struct {
	mu       sync.RWMutex
	explicit string
	saved    string
}

func NewTokenSource(explicit string) *TokenSource {
	return &TokenSource{explicit: explicit}
}

// Token returns the token to send, or "" when the user is not logged in
func (s *TokenSource) Token() string {
	s.mu.RLock()
	explicit, saved := s.explicit, s.saved
	s.mu.RUnlock()

	if explicit != "" {
		return explicit
	}
	if saved != "" {
		return saved
	}
	token, err := GetToken()
	if err != nil {
		return ""
	}
	return token
}

// SetToken keeps token for this process and stores it in the keyring. The
// in-memory token is kept even when the keyring write fails.
func (s *TokenSource) SetToken(token string) error {
	s.mu.Lock()
	s.explicit = ""
	s.saved = token
	s.mu.Unlock()
	return SetToken(token)
}

// DeleteToken forgets the explicit and saved tokens and removes the keyring
// entry. A missing keyring entry is not an error.
func (s *TokenSource) DeleteToken() error {
	s.mu.Lock()
	s.explicit = ""
	s.saved = ""
	s.mu.Unlock()
	if err := DeleteToken(); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
