package keyring

import (
	"errors"
	"fmt"

	"github.com/julianstephens/memosphere/internal/constants"
	"github.com/zalando/go-keyring"
)

var (
	// ErrNotFound is returned when no token is stored in the keyring
	ErrNotFound = errors.New("API token not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetAPIToken retrieves the remote entry API token from the OS keyring.
// Returns ErrNotFound if no token is stored.
func GetAPIToken() (string, error) {
	token, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return token, nil
}

// SetAPIToken stores the remote entry API token in the OS keyring.
func SetAPIToken(token string) error {
	if token == "" {
		return errors.New("API token cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, token); err != nil {
		return fmt.Errorf("failed to store API token in keyring: %w", err)
	}
	return nil
}

// DeleteAPIToken removes the remote entry API token from the OS keyring.
func DeleteAPIToken() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete API token from keyring: %w", err)
	}
	return nil
}
