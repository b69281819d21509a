package calllog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"campaign-caller-go/internal/types"
)

// FileStore keeps the log as a pretty-printed JSON array in a single
// flat file. Each append re-reads the file, appends, and rewrites the
// whole array through a temp file + rename so an interrupted writer
// never truncates existing entries. The mutex serializes writers inside
// this process (flock is per-instance, not per-goroutine); the flock
// excludes other processes on the same host.
type FileStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *FileStore) Append(ctx context.Context, entry types.CallLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.lock.Path(), err)
	}
	defer s.lock.Unlock()

	entries := s.read()
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode log: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".call_logs-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close log: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace log: %w", err)
	}
	return nil
}

// LoadAll returns the persisted sequence. Missing or unparsable files
// degrade to an empty log.
func (s *FileStore) LoadAll(ctx context.Context) []types.CallLogEntry {
	return s.read()
}

func (s *FileStore) read() []types.CallLogEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var entries []types.CallLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}
