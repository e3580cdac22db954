package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apierrors "github.com/productsiksha/pmsiksha/internal/errors"
)

// Credentials holds the bearer token obtained at login.
// The token is a JWT issued by the backend with a 24 hour lifetime.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Validate checks that the credentials are usable
func Validate(creds *Credentials) error {
	if creds == nil || creds.Token == "" {
		return apierrors.ErrNotLoggedIn
	}
	return nil
}

// GetCredentialsPath returns the path to the credentials file
func GetCredentialsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "credentials.json"), nil
}

// LoadCredentials loads the saved session token from disk
func LoadCredentials() (*Credentials, error) {
	path, err := GetCredentialsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if err := Validate(&creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

// SaveCredentials persists the session token to disk
func SaveCredentials(creds *Credentials) error {
	if err := Validate(creds); err != nil {
		return err
	}

	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	path := filepath.Join(configDir, "credentials.json")

	// 0o600: the token grants account access
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// ClearCredentials removes the saved session token (logout)
func ClearCredentials() error {
	path, err := GetCredentialsPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}

	return nil
}
