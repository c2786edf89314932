// Package keyring stores the database connection string in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "sitegrid"
	user    = "database-url"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetDatabaseURL retrieves the database connection string from the OS keyring.
func GetDatabaseURL() (string, error) {
	url, err := keyring.Get(service, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return url, nil
}

// SetDatabaseURL stores the database connection string in the OS keyring.
func SetDatabaseURL(url string) error {
	if url == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(service, user, url); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// DeleteDatabaseURL removes the database connection string from the OS keyring.
func DeleteDatabaseURL() error {
	if err := keyring.Delete(service, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}
