package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/revtopics/pkg/revtopics/internalerr"
	"github.com/cognicore/revtopics/pkg/revtopics/lda"
	"github.com/cognicore/revtopics/pkg/revtopics/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	reports map[string]store.Report
	closed  bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{reports: make(map[string]store.Report)}
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SaveReport stores a copy of r, replacing any report with the same id.
func (s *Store) SaveReport(ctx context.Context, r store.Report) error {
	if r.ID == "" {
		return fmt.Errorf("report without id: %w", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return internalerr.ErrStoreUnavailable
	}
	s.reports[r.ID] = copyReport(r)
	return nil
}

// GetReport returns a report by id.
func (s *Store) GetReport(ctx context.Context, id string) (store.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.Report{}, internalerr.ErrStoreUnavailable
	}

	r, ok := s.reports[id]
	if !ok {
		return store.Report{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	return copyReport(r), nil
}

// ListReports returns up to limit reports, newest first. limit <= 0
// returns all of them.
func (s *Store) ListReports(ctx context.Context, limit int) ([]store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, internalerr.ErrStoreUnavailable
	}

	out := make([]store.Summary, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r.Summarize())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyReport(r store.Report) store.Report {
	cp := r
	cp.Terms = append(cp.Terms[:0:0], r.Terms...)
	cp.Sentiment = append(cp.Sentiment[:0:0], r.Sentiment...)
	cp.DominantTopics = append(cp.DominantTopics[:0:0], r.DominantTopics...)
	cp.Ratings = append(cp.Ratings[:0:0], r.Ratings...)
	if r.Topics != nil {
		cp.Topics = make([]lda.Topic, len(r.Topics))
		for i, t := range r.Topics {
			cp.Topics[i] = lda.Topic{ID: t.ID, Terms: append(t.Terms[:0:0], t.Terms...)}
		}
	}
	return cp
}
