package calllog

import (
	"context"

	"campaign-caller-go/internal/types"
)

// Store is the call audit log. Append persists one entry at the end of
// the ordered sequence. LoadAll returns the full sequence and never
// fails: a missing or unreadable store degrades to an empty log, the
// gateway remains the system of record.
type Store interface {
	Append(ctx context.Context, entry types.CallLogEntry) error
	LoadAll(ctx context.Context) []types.CallLogEntry
}
