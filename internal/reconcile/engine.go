package reconcile

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// Report summarises one reconciliation pass.
type Report struct {
	InputCount          int `json:"input_count"`
	OutputCount         int `json:"output_count"`
	DuplicatesCollapsed int `json:"duplicates_collapsed"`
	DroppedWithoutID    int `json:"dropped_without_id"`
}

// Reconcile folds records with equal transaction identifiers using Merge.
// Records without an identifier are dropped. Output follows the order in
// which each identifier was first seen.
func Reconcile(records []domain.TransactionRecord) []domain.TransactionRecord {
	out, _ := ReconcileWithReport(records)
	return out
}

// ReconcileWithReport is Reconcile plus counts of what happened.
func ReconcileWithReport(records []domain.TransactionRecord) ([]domain.TransactionRecord, Report) {
	groups, dropped := group(records)

	out := make([]domain.TransactionRecord, len(groups))
	for i, g := range groups {
		out[i] = fold(g)
	}
	return out, newReport(len(records), len(out), dropped)
}

// ReconcileConcurrent produces the same output as Reconcile. Identifier
// groups are split into contiguous ranges and each range is folded by its
// own worker. The context is checked between groups.
func ReconcileConcurrent(ctx context.Context, records []domain.TransactionRecord, workers int) ([]domain.TransactionRecord, error) {
	if workers < 1 {
		workers = 1
	}

	groups, _ := group(records)
	out := make([]domain.TransactionRecord, len(groups))

	chunk := (len(groups) + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(groups); start += chunk {
		end := min(start+chunk, len(groups))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				out[i] = fold(groups[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ReconcileConcurrent: %w", err)
	}
	return out, nil
}

// group buckets records by identifier in first-seen order, keeping input
// order inside each bucket.
func group(records []domain.TransactionRecord) ([][]domain.TransactionRecord, int) {
	index := make(map[string]int)
	var groups [][]domain.TransactionRecord
	dropped := 0

	for _, r := range records {
		if r.TransactionID == "" {
			dropped++
			continue
		}
		i, ok := index[r.TransactionID]
		if !ok {
			i = len(groups)
			index[r.TransactionID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups, dropped
}

func fold(g []domain.TransactionRecord) domain.TransactionRecord {
	acc := g[0]
	for _, r := range g[1:] {
		acc = Merge(acc, r)
	}
	return acc
}

func newReport(in, out, dropped int) Report {
	return Report{
		InputCount:          in,
		OutputCount:         out,
		DuplicatesCollapsed: in - dropped - out,
		DroppedWithoutID:    dropped,
	}
}
