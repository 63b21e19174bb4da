// Package keystore holds the user's Gemini API key in ephemeral on-disk
// storage. The key is only considered valid for a fixed window after
// submission; an expired record is deleted on the next read.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TTL is how long a submitted key stays valid.
const TTL = 30 * time.Minute

const fileName = "credential.json"

// ErrEmptyKey is returned by Submit when the trimmed input is blank.
var ErrEmptyKey = errors.New("API key is empty")

// record is the on-disk shape: the key plus its submission time in epoch
// milliseconds.
type record struct {
	Key       string `json:"key"`
	Timestamp int64  `json:"timestamp"`
}

// Store reads and writes the credential record under a data directory.
type Store struct {
	dir string
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store rooted at dir. The directory is created lazily on the
// first Submit.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultDir returns the standard data directory (~/.verdant).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".verdant"), nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, fileName)
}

// Submit stores a key with the current time. A blank key (after trimming)
// fails with ErrEmptyKey and leaves any existing record untouched.
func (s *Store) Submit(raw string) error {
	key := strings.TrimSpace(raw)
	if key == "" {
		return ErrEmptyKey
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(record{
		Key:       key,
		Timestamp: s.now().UnixMilli(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	// The key is a secret; keep the record owner-only.
	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

// Load returns the stored key while it is younger than TTL. An expired,
// missing, or unreadable record yields ("", false); expired and corrupt
// records are deleted so the next Load starts clean.
func (s *Store) Load() (string, bool) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return "", false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil || rec.Key == "" {
		_ = s.Clear()
		return "", false
	}

	age := s.now().Sub(time.UnixMilli(rec.Timestamp))
	if age < 0 || age >= TTL {
		_ = s.Clear()
		return "", false
	}
	return rec.Key, true
}

// Age reports how long ago the current record was submitted. ok is false
// when no record exists.
func (s *Store) Age() (time.Duration, bool) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return 0, false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil || rec.Key == "" {
		return 0, false
	}
	return s.now().Sub(time.UnixMilli(rec.Timestamp)), true
}

// Clear deletes the credential record. Deleting a missing record is not an
// error.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}
