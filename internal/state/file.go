package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"financas/internal/core"
)

// FileStore keeps the state document in a single JSON file. Writes are
// plain synchronous whole-file replacements; a crash mid-write can corrupt
// the slot, which Load treats as an unreadable slot and recovers from by
// reseeding.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads the slot. An absent file yields the seeded default without
// touching disk; an unreadable or unparsable file is logged and also falls
// back to the seeded default, leaving the bad slot in place until the next
// save replaces it.
func (f *FileStore) Load(ctx context.Context) (*core.AppState, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		slog.InfoContext(ctx, "State slot absent, seeding default state", "path", f.path)
		return Seed(), nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "State slot unreadable, falling back to seeded default",
			"path", f.path, "error", err)
		return Seed(), nil
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.ErrorContext(ctx, "State slot corrupt, falling back to seeded default",
			"path", f.path, "error", err)
		return Seed(), nil
	}

	return Materialize(ctx, doc), nil
}

// Save serializes the full state and replaces the slot synchronously.
func (f *FileStore) Save(ctx context.Context, s *core.AppState) error {
	raw, err := json.MarshalIndent(Snapshot(s), "", "  ")
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return fmt.Errorf("write state slot: %w", err)
	}
	return nil
}
