package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/productsiksha/pmsiksha/internal/chat"
)

func TestSavedKeys(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"question-1.json", "question-42.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o600); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
	}

	keys, err := savedKeys(dir)
	if err != nil {
		t.Fatalf("savedKeys failed: %v", err)
	}

	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %d: %v", len(keys), keys)
	}
	want := map[string]bool{"question-1": true, "question-42": true}
	for _, key := range keys {
		if !want[key] {
			t.Errorf("Unexpected key %q", key)
		}
	}
}

func TestSavedKeys_EmptyDir(t *testing.T) {
	keys, err := savedKeys(t.TempDir())
	if err != nil {
		t.Fatalf("savedKeys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Expected no keys, got %v", keys)
	}
}

func TestLastFeedback(t *testing.T) {
	store := chat.NewStore(chat.NewMemKV())
	key := chat.ContextKey(7)

	t.Run("empty conversation", func(t *testing.T) {
		if got := lastFeedback(store, key); got != "" {
			t.Errorf("Expected empty feedback, got %q", got)
		}
	})

	t.Run("returns most recent coach turn", func(t *testing.T) {
		turns := []chat.Turn{
			chat.NewTurn(chat.RoleUser, "first answer", nil),
			chat.NewTurn(chat.RoleAssistant, "first feedback", nil),
			chat.NewTurn(chat.RoleUser, "second answer", nil),
			chat.NewTurn(chat.RoleAssistant, "second feedback", nil),
		}
		if err := store.Save(key, turns); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if got := lastFeedback(store, key); got != "second feedback" {
			t.Errorf("lastFeedback = %q, want %q", got, "second feedback")
		}
	})

	t.Run("skips error replies", func(t *testing.T) {
		turns := []chat.Turn{
			chat.NewTurn(chat.RoleUser, "answer", nil),
			chat.NewTurn(chat.RoleAssistant, "real feedback", nil),
			chat.NewTurn(chat.RoleUser, "another answer", nil),
			chat.NewTurn(chat.RoleAssistant, chat.ErrorReply, nil),
		}
		if err := store.Save(key, turns); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if got := lastFeedback(store, key); got != "real feedback" {
			t.Errorf("lastFeedback = %q, want %q", got, "real feedback")
		}
	})
}

func TestCurrentFilter(t *testing.T) {
	originalCompany, originalFrom, originalTo := companyFlag, fromDateFlag, toDateFlag
	defer func() {
		companyFlag, fromDateFlag, toDateFlag = originalCompany, originalFrom, originalTo
	}()

	companyFlag = "google"
	fromDateFlag = "2024-01-01"
	toDateFlag = "2024-06-30"

	filter := currentFilter()
	if filter.Company != "google" {
		t.Errorf("Company = %s", filter.Company)
	}
	if filter.FromDate != "2024-01-01" {
		t.Errorf("FromDate = %s", filter.FromDate)
	}
	if filter.ToDate != "2024-06-30" {
		t.Errorf("ToDate = %s", filter.ToDate)
	}
}
