// Package memory is an in-process RowAppender for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"financas/internal/export"
)

type Store struct {
	mu   sync.Mutex
	rows []export.Row
}

var _ export.RowAppender = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r export.Row) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []export.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]export.Row, len(s.rows))
	copy(out, s.rows)
	return out
}
