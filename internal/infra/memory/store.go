// Package memory is an in-process TransactionStore for tests and STORE=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
	"github.com/Francisnampellah/MeMoney-sub000/internal/reconcile"
)

// ParsingRun mirrors the parsing_runs row kept by the durable stores.
type ParsingRun struct {
	ID           string
	Source       string
	Status       string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Store keeps runs and records in maps guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	runs    map[string]*ParsingRun
	records map[string]domain.TransactionRecord
	order   []string
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		runs:    make(map[string]*ParsingRun),
		records: make(map[string]domain.TransactionRecord),
		now:     time.Now,
	}
}

func (s *Store) StartParsingRun(ctx context.Context, source string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.runs[id] = &ParsingRun{
		ID:        id,
		Source:    source,
		Status:    pipeline.RunStatusRunning,
		StartedAt: s.now(),
	}
	return id, nil
}

func (s *Store) MarkParsingRunFailed(ctx context.Context, parsingRunID string, parseErr error) {
	if err := s.finishRun(parsingRunID, pipeline.RunStatusFailed, pipeline.TruncateError(parseErr)); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("parsing_run_id", parsingRunID).Msg("MarkParsingRunFailed")
	}
}

func (s *Store) MarkParsingRunSucceeded(ctx context.Context, parsingRunID string) error {
	return s.finishRun(parsingRunID, pipeline.RunStatusSuccess, "")
}

func (s *Store) finishRun(id, status, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("parsing run %s not found", id)
	}
	run.Status = status
	run.ErrorMessage = msg
	run.FinishedAt = s.now()
	return nil
}

// Run returns a copy of a parsing run.
func (s *Store) Run(id string) (ParsingRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return ParsingRun{}, false
	}
	return *run, true
}

func (s *Store) UpsertTransactions(ctx context.Context, parsingRunID string, records []domain.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r.TransactionID == "" {
			continue
		}
		stored, ok := s.records[r.TransactionID]
		if !ok {
			s.records[r.TransactionID] = r
			s.order = append(s.order, r.TransactionID)
			continue
		}
		s.records[r.TransactionID] = reconcile.Merge(stored, r)
	}
	return nil
}

// QueryTransactionsByDateRange returns matching records ordered by date,
// then by first insertion.
func (s *Store) QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TransactionRecord
	for _, id := range s.order {
		r := s.records[id]
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Len reports how many distinct transactions are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
