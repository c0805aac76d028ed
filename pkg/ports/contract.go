package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJournalContract runs a suite of tests to verify that a Journal implementation
// adheres to the defined interface contract.
func RunJournalContract(t *testing.T, journal Journal) {
	ctx := context.Background()
	stream := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Append and Entries", func(t *testing.T) {
		defer func() { _ = journal.Clear(ctx, stream) }()

		require.NoError(t, journal.Append(ctx, stream, domain.Action{"type": "LOAD_TODOS_REQUEST"}))
		require.NoError(t, journal.Append(ctx, stream, domain.Action{
			"type":    "LOAD_TODOS_SUCCESS",
			"payload": map[string]any{"id": "1"},
		}))

		entries, err := journal.Entries(ctx, stream)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		first, _ := entries[0].Type()
		second, _ := entries[1].Type()
		assert.Equal(t, "LOAD_TODOS_REQUEST", first)
		assert.Equal(t, "LOAD_TODOS_SUCCESS", second)
		assert.Equal(t, map[string]any{"id": "1"}, entries[1]["payload"])
	})

	t.Run("Unknown Stream", func(t *testing.T) {
		entries, err := journal.Entries(ctx, "missing-"+stream)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, journal.Append(ctx, stream, domain.Action{"type": "DELETE_TODOS_REQUEST"}))
		require.NoError(t, journal.Clear(ctx, stream))

		entries, err := journal.Entries(ctx, stream)
		require.NoError(t, err)
		assert.Empty(t, entries, "Entries after Clear should be empty")
	})

	t.Run("Concurrent Append", func(t *testing.T) {
		defer func() { _ = journal.Clear(ctx, stream) }()

		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = journal.Append(ctx, stream, domain.Action{"type": fmt.Sprintf("LOAD_N%d_REQUEST", i)})
			}(i)
		}
		wg.Wait()

		entries, err := journal.Entries(ctx, stream)
		require.NoError(t, err)
		assert.Len(t, entries, 10)
	})
}
