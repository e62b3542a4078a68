package learner

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Store owns the process-wide learned model, its lock, and its persistence
// file. Generation runs read an immutable snapshot; feedback ingestion takes
// the write lock and writes through to disk.
type Store struct {
	mu    sync.RWMutex
	path  string
	model *Model
}

// Open loads the model from path. Load is best-effort: a missing file yields
// an empty model, a corrupt file yields an empty model with a warning.
func Open(path string) *Store {
	s := &Store{path: path, model: NewModel()}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("learner: could not read %s: %v, starting empty", path, err)
		}
		return s
	}
	m := NewModel()
	if err := json.Unmarshal(data, m); err != nil {
		log.Printf("learner: corrupt model file %s: %v, starting empty", path, err)
		return s
	}
	s.model = m
	return s
}

// Snapshot returns a deep copy of the current model for a generation run.
func (s *Store) Snapshot() *Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Clone()
}

// ApplyFeedback ingests one event under the write lock and persists.
func (s *Store) ApplyFeedback(ev FeedbackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.Apply(ev, time.Now())
	return s.saveLocked()
}

// Train folds exemplars into the model under the write lock and persists.
func (s *Store) Train(examples []TrainingExample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.Train(examples)
	return s.saveLocked()
}

// Stats returns a copy of the global counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Stats
}

// Reset discards all learned state and persists the empty model.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = NewModel()
	return s.saveLocked()
}

// saveLocked writes the snapshot blob via a temp-file rename so a crashed
// write never leaves a truncated model on disk.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(s.model)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace model: %w", err)
	}
	return nil
}
