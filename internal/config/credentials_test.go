package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apierrors "github.com/productsiksha/pmsiksha/internal/errors"
)

func TestSaveAndLoadCredentials(t *testing.T) {
	withTempHome(t)

	creds := &Credentials{
		Token: "eyJhbGciOiJIUzI1NiJ9.test.token",
		Email: "pm@example.com",
	}

	if err := SaveCredentials(creds); err != nil {
		t.Fatalf("SaveCredentials failed: %v", err)
	}

	loaded, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}

	if loaded.Token != creds.Token {
		t.Errorf("Token = %s, want %s", loaded.Token, creds.Token)
	}
	if loaded.Email != "pm@example.com" {
		t.Errorf("Email = %s, want pm@example.com", loaded.Email)
	}
}

func TestLoadCredentials_NotLoggedIn(t *testing.T) {
	withTempHome(t)

	_, err := LoadCredentials()
	if !errors.Is(err, apierrors.ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestSaveCredentials_RejectsEmptyToken(t *testing.T) {
	withTempHome(t)

	err := SaveCredentials(&Credentials{Email: "pm@example.com"})
	if !errors.Is(err, apierrors.ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn for empty token, got %v", err)
	}
}

func TestSaveCredentials_FileMode(t *testing.T) {
	tmpDir := withTempHome(t)

	if err := SaveCredentials(&Credentials{Token: "tok", Email: "a@b.c"}); err != nil {
		t.Fatalf("SaveCredentials failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(tmpDir, ".pmsiksha", "credentials.json"))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	if info.Mode().Perm() != 0o600 {
		t.Errorf("credentials file mode = %o, want 600", info.Mode().Perm())
	}
}

func TestClearCredentials(t *testing.T) {
	withTempHome(t)

	if err := SaveCredentials(&Credentials{Token: "tok", Email: "a@b.c"}); err != nil {
		t.Fatal(err)
	}

	if err := ClearCredentials(); err != nil {
		t.Fatalf("ClearCredentials failed: %v", err)
	}

	if _, err := LoadCredentials(); !errors.Is(err, apierrors.ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn after clear, got %v", err)
	}

	// Clearing again is not an error
	if err := ClearCredentials(); err != nil {
		t.Errorf("second ClearCredentials failed: %v", err)
	}
}
