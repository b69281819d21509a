package calllog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-caller-go/internal/types"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "call_logs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreEmpty(t *testing.T) {
	store := newTestSQLiteStore(t)
	assert.Empty(t, store.LoadAll(context.Background()))
}

func TestSQLiteStoreAppendPreservesOrder(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	entries := []types.CallLogEntry{
		{Time: "2025-06-01T10:00:00Z", CallID: "abc123", Number: "+15551234567"},
		{Time: "2025-06-01T10:05:00Z", CallID: "", Number: "+15557654321"},
		{Time: "2025-06-01T10:10:00Z", CallID: "ghi789", Number: "+15550000000"},
	}
	for _, e := range entries {
		require.NoError(t, store.Append(ctx, e))
	}

	got := store.LoadAll(ctx)
	require.Len(t, got, len(entries))
	assert.Equal(t, entries, got)
	assert.Equal(t, entries[len(entries)-1], got[len(got)-1])
}
