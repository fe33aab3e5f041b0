// Package checkpoint persists the set of completed top-level work units so
// an interrupted professor sync can resume without redoing finished work.
// The file is plain JSON, rewritten atomically after each completed unit.
package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/yigit/courseatlas/internal/pkg/logger"
)

type fileFormat struct {
	ProcessedInstructorIDs []string `json:"processedInstructorIds"`
}

// Store is a durable set of processed unit ids.
type Store struct {
	path string

	mu        sync.Mutex
	processed map[string]struct{}
}

// Load reads the checkpoint at path. A missing or unparseable file means
// "start fresh" and is never fatal.
func Load(path string) *Store {
	s := &Store{
		path:      path,
		processed: make(map[string]struct{}),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("checkpoint unreadable, starting fresh")
		}
		return s
	}

	var f fileFormat
	if err := json.Unmarshal(raw, &f); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("checkpoint corrupt, starting fresh")
		return s
	}

	for _, id := range f.ProcessedInstructorIDs {
		s.processed[id] = struct{}{}
	}
	return s
}

// Seen reports whether the unit was completed in a previous run.
func (s *Store) Seen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[id]
	return ok
}

// Count returns the number of completed units on record.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processed)
}

// Mark records a completed unit and rewrites the file. Write failures are
// returned so the caller can decide whether to press on without resumability.
func (s *Store) Mark(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processed[id] = struct{}{}
	return s.writeLocked()
}

// writeLocked rewrites the checkpoint via temp file + rename so a crash
// mid-write never leaves a truncated file behind.
func (s *Store) writeLocked() error {
	ids := make([]string, 0, len(s.processed))
	for id := range s.processed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	raw, err := json.MarshalIndent(fileFormat{ProcessedInstructorIDs: ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("creating checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing checkpoint temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing checkpoint: %w", err)
	}
	return nil
}
