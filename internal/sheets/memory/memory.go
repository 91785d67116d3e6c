package memory

import (
	"context"
	"fmt"
	"sync"

	"painel/internal/core"
	ports "painel/internal/sheets"
)

var _ ports.EventWriter = (*Store)(nil)

// Store keeps audit rows in process, for development and tests.
type Store struct {
	mu   sync.Mutex
	rows [][]any
}

func New() *Store {
	return &Store{}
}

// AppendEvent stores the row and returns a synthetic row reference.
func (s *Store) AppendEvent(_ context.Context, ev core.Event) (string, error) {
	if !ev.Type.Valid() {
		return "", fmt.Errorf("unknown event type %q", ev.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, ports.EventRow(ev))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the appended rows.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.rows...)
}
