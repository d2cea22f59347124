package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

// FileStore keeps one JSON file per record in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("file store: no directory")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, l *graph.Layout) (string, error) {
	prepare(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := graph.WriteLayoutFile(*l, s.recordPath(l.ID)); err != nil {
		return "", fmt.Errorf("write layout file: %w", err)
	}
	return l.ID, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*graph.Layout, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.recordPath(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	var l graph.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", id, err)
	}
	return &l, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRecordID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.recordPath(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	if err != nil {
		return fmt.Errorf("remove layout file: %w", err)
	}
	return nil
}

// List reads every record in the directory. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context, limit int) ([]graph.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}
	var out []graph.Layout
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var l graph.Layout
		if err := json.Unmarshal(data, &l); err != nil {
			continue
		}
		out = append(out, l)
	}
	slices.SortFunc(out, newestFirst)
	return out[:min(len(out), listLimit(limit))], nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }

// Path returns the record directory.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)
