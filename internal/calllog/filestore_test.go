package calllog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-caller-go/internal/types"
)

func TestFileStoreLoadAllMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "call_logs.json"))
	assert.Empty(t, store.LoadAll(context.Background()))
}

func TestFileStoreLoadAllCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call_logs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewFileStore(path)
	assert.Empty(t, store.LoadAll(context.Background()))
}

func TestFileStoreAppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call_logs.json")
	store := NewFileStore(path)
	ctx := context.Background()

	first := types.CallLogEntry{Time: "2025-06-01T10:00:00Z", CallID: "abc123", Number: "+15551234567"}
	second := types.CallLogEntry{Time: "2025-06-01T10:05:00Z", CallID: "def456", Number: "+15557654321"}

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	entries := store.LoadAll(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0])
	assert.Equal(t, second, entries[len(entries)-1])
}

func TestFileStorePersistsPrettyJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call_logs.json")
	store := NewFileStore(path)

	require.NoError(t, store.Append(context.Background(), types.CallLogEntry{
		Time: "2025-06-01T10:00:00Z", CallID: "abc123", Number: "+15551234567",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ", "log file should be indented")

	var entries []types.CallLogEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
}

func TestFileStoreConcurrentAppendsLoseNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call_logs.json")
	store := NewFileStore(path)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Append(ctx, types.CallLogEntry{
				Time:   "2025-06-01T10:00:00Z",
				CallID: fmt.Sprintf("call-%02d", i),
				Number: "+15551234567",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries := store.LoadAll(ctx)
	require.Len(t, entries, writers, "concurrent appends must not drop entries")

	seen := make(map[string]bool, writers)
	for _, e := range entries {
		seen[e.CallID] = true
	}
	assert.Len(t, seen, writers)
}

func TestFileStoreAppendKeepsExistingEntriesOnCorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call_logs.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	store := NewFileStore(path)
	entry := types.CallLogEntry{Time: "2025-06-01T10:00:00Z", CallID: "abc123", Number: "+15551234567"}
	require.NoError(t, store.Append(context.Background(), entry))

	entries := store.LoadAll(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}
