package memory

import (
	"context"
	"sync"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

// Journal implements ports.Journal in memory.
// Safe for concurrent use.
type Journal struct {
	data map[string][]domain.Action
	mu   sync.RWMutex
}

// NewJournal creates a new in-memory journal.
func NewJournal() *Journal {
	return &Journal{
		data: make(map[string][]domain.Action),
	}
}

// Append stores a copy of the action so later mutation by the caller is not observed.
func (j *Journal) Append(ctx context.Context, stream string, action domain.Action) error {
	copied := action.Clone()

	j.mu.Lock()
	defer j.mu.Unlock()
	j.data[stream] = append(j.data[stream], copied)
	return nil
}

// Entries returns copies of the stream's actions.
func (j *Journal) Entries(ctx context.Context, stream string) ([]domain.Action, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	entries := make([]domain.Action, 0, len(j.data[stream]))
	for _, a := range j.data[stream] {
		entries = append(entries, a.Clone())
	}
	return entries, nil
}

// Clear removes the stream.
func (j *Journal) Clear(ctx context.Context, stream string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.data, stream)
	return nil
}
