// Package storage loads rental observations and keeps them in an immutable,
// timestamp-ordered in-memory store.
//
// Observations come from a Source: a CSV export of the rental dataset (local or
// fetched over HTTP) or a SQL table in SQLite or PostgreSQL. Every record is validated on the way in, so the
// analytics package can assume clean input. The store itself never changes the
// records it hands out; a reload swaps the whole dataset at once.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rewired-gh/bikepulse/internal/logger"
	"github.com/rewired-gh/bikepulse/internal/models"
)

// Source produces the full set of observations.
type Source interface {
	Load(ctx context.Context) ([]models.Observation, error)
}

// Options controls how a Store accepts records.
type Options struct {
	// AllowDuplicateIDs keeps records that share an ID instead of rejecting the
	// dataset. Repeated IDs act as repeat customers in RFM scoring.
	AllowDuplicateIDs bool
}

// Store provides thread-safe read access to a validated dataset
type Store struct {
	records []models.Observation
	mu      sync.RWMutex
	opts    Options
}

// New validates records and returns a Store holding them in timestamp order.
// Records sharing a day keep their original relative order.
func New(records []models.Observation, opts Options) (*Store, error) {
	s := &Store{opts: opts}
	if err := s.Replace(records); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads every observation from src into a new Store.
func Load(ctx context.Context, src Source, opts Options) (*Store, error) {
	started := time.Now()

	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}

	s, err := New(records, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded %d observations in %v", len(records), time.Since(started))
	return s, nil
}

// Replace validates records and swaps them in as the store's dataset.
// On error the previous dataset is kept.
func (s *Store) Replace(records []models.Observation) error {
	prepared := make([]models.Observation, len(records))
	seen := make(map[int64]struct{}, len(records))
	duplicates := 0

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("invalid observation %d: %w", r.ID, err)
		}
		if _, exists := seen[r.ID]; exists {
			if !s.opts.AllowDuplicateIDs {
				return fmt.Errorf("duplicate observation id: %d", r.ID)
			}
			duplicates++
		}
		seen[r.ID] = struct{}{}

		r.Timestamp = models.Day(r.Timestamp)
		prepared[i] = r
	}

	if duplicates > 0 {
		logger.Warn("Dataset contains %d observations with repeated IDs", duplicates)
	}

	// Sort by day ascending (oldest first)
	sort.SliceStable(prepared, func(i, j int) bool {
		return prepared[i].Timestamp.Before(prepared[j].Timestamp)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = prepared
	return nil
}

// Records returns a copy of the dataset in timestamp order.
func (s *Store) Records() []models.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.Observation, len(s.records))
	copy(records, s.records)
	return records
}

// Len returns the number of observations held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Bounds returns the first and last day in the dataset; ok is false when empty.
func (s *Store) Bounds() (first, last time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.records[0].Timestamp, s.records[len(s.records)-1].Timestamp, true
}
