// Package pipeline runs batches of raw messages through parsing and
// reconciliation, and drives ingestion runs against a store.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/reconcile"
	"github.com/Francisnampellah/MeMoney-sub000/internal/smsparser"
)

// BatchResult is the outcome of one parse-and-reconcile pass.
type BatchResult struct {
	Records  []domain.TransactionRecord `json:"records"`
	Accepted int                        `json:"accepted"`
	Rejected int                        `json:"rejected"`
	Report   reconcile.Report           `json:"report"`
}

// ParseAll builds a record for every valid message and reconciles them.
// Invalid messages are skipped.
func ParseAll(raws []string) []domain.TransactionRecord {
	parsed := make([]domain.TransactionRecord, 0, len(raws))
	for _, raw := range raws {
		if rec, ok := smsparser.Build(raw); ok {
			parsed = append(parsed, rec)
		}
	}
	return reconcile.Reconcile(parsed)
}

// ParseAllConcurrent returns the same records as ParseAll, parsing with up
// to workers goroutines.
func ParseAllConcurrent(ctx context.Context, raws []string, workers int) ([]domain.TransactionRecord, error) {
	res, err := RunBatch(ctx, nil, raws, workers)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// RunBatch parses and reconciles raws, logging counts on the context logger.
// A nil parser uses the wall clock for undated messages.
func RunBatch(ctx context.Context, p *smsparser.Parser, raws []string, workers int) (*BatchResult, error) {
	parsed, rejected, err := parseMessages(ctx, p, raws, workers)
	if err != nil {
		return nil, fmt.Errorf("RunBatch: %w", err)
	}

	records, report := reconcile.ReconcileWithReport(parsed)

	log := logger.FromContext(ctx)
	log.Info().
		Int("messages", len(raws)).
		Int("accepted", len(parsed)).
		Int("rejected", rejected).
		Int("duplicates_collapsed", report.DuplicatesCollapsed).
		Int("records", len(records)).
		Msg("Batch parsed")

	return &BatchResult{
		Records:  records,
		Accepted: len(parsed),
		Rejected: rejected,
		Report:   report,
	}, nil
}

// parseMessages builds records in input order and counts rejections.
func parseMessages(ctx context.Context, p *smsparser.Parser, raws []string, workers int) ([]domain.TransactionRecord, int, error) {
	if p == nil {
		p = smsparser.New()
	}
	if workers < 1 {
		workers = DefaultWorkers
	}

	built := make([]domain.TransactionRecord, len(raws))
	valid := make([]bool, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, raw := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			built[i], valid[i] = p.Build(raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	log := logger.FromContext(ctx)
	parsed := make([]domain.TransactionRecord, 0, len(raws))
	rejected := 0
	for i, ok := range valid {
		if !ok {
			rejected++
			log.Debug().Int("index", i).Str("preview", preview(raws[i])).Msg("Message rejected")
			continue
		}
		parsed = append(parsed, built[i])
	}
	return parsed, rejected, nil
}

func preview(raw string) string {
	const n = 40
	r := []rune(raw)
	if len(r) <= n {
		return raw
	}
	return string(r[:n]) + "..."
}
