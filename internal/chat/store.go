package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Store persists conversation turn sequences in a KV, one record per
// question context. Every mutation rewrites the full sequence.
type Store struct {
	kv     KV
	logOut io.Writer
}

// NewStore creates a store over the given KV
func NewStore(kv KV) *Store {
	return &Store{kv: kv, logOut: os.Stderr}
}

// SetLogOutput redirects warning output (used by tests)
func (s *Store) SetLogOutput(w io.Writer) {
	s.logOut = w
}

// warnf writes a non-fatal warning to the store's log output
func (s *Store) warnf(format string, args ...any) {
	fmt.Fprintf(s.logOut, format, args...)
}

// Load reads the persisted turns for key. An absent or malformed record
// yields an empty sequence; a parse failure is logged but never returned,
// so a corrupt record behaves like a fresh conversation.
func (s *Store) Load(key string) []Turn {
	raw, ok := s.kv.Get(key)
	if !ok {
		return nil
	}

	var turns []Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		fmt.Fprintf(s.logOut, "Warning: discarding unreadable conversation record %q: %v\n", key, err)
		return nil
	}

	return turns
}

// Save persists the full turn sequence for key, overwriting any prior
// record. An empty sequence with no existing record is skipped so that
// opening a question never writes an empty placeholder.
func (s *Store) Save(key string, turns []Turn) error {
	if len(turns) == 0 {
		if _, exists := s.kv.Get(key); !exists {
			return nil
		}
	}

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	return s.kv.Set(key, string(data))
}

// Clear removes the persisted record for key
func (s *Store) Clear(key string) error {
	return s.kv.Remove(key)
}
