package bigquery

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
	"github.com/Francisnampellah/MeMoney-sub000/internal/reconcile"
)

// UpsertTransactions streams one row per record. The insert id combines the
// run and transaction ids so a retried run does not duplicate rows; merging
// with earlier runs happens when rows are read back.
func (s *Store) UpsertTransactions(ctx context.Context, parsingRunID string, records []domain.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	ingested := s.now()
	savers := make([]*bigquery.StructSaver, 0, len(records))
	for _, r := range records {
		if r.TransactionID == "" {
			continue
		}
		savers = append(savers, &bigquery.StructSaver{
			Struct:   RecordToRow(r, parsingRunID, ingested),
			InsertID: parsingRunID + ":" + r.TransactionID,
		})
	}

	inserter := s.client.DatasetInProject(s.projectID, s.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, savers); err != nil {
		return fmt.Errorf("UpsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// QueryTransactionsByDateRange returns the merged view of every transaction
// with an observation dated in [start, end]. Only rows from successful runs
// count. Observations are folded oldest first.
func (s *Store) QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]domain.TransactionRecord, error) {
	tx, runs := s.table(transactionsTable), s.table(parsingRunsTable)

	q := s.client.Query(fmt.Sprintf(`
		WITH successful AS (
			SELECT t.*
			FROM %s t
			INNER JOIN %s pr
			  ON t.parsing_run_id = pr.parsing_run_id
			WHERE pr.status = 'SUCCESS'
		)
		SELECT
			transaction_id,
			parsing_run_id,
			status,
			direction,
			transaction_type,
			channel,
			amount,
			currency,
			fee,
			government_levy,
			balance_after,
			counterparty_name,
			counterparty_account,
			transaction_date,
			transaction_time,
			raw_text,
			ingested_ts
		FROM successful
		WHERE transaction_id IN (
			SELECT transaction_id FROM successful
			WHERE transaction_date >= @start_date
			  AND transaction_date <= @end_date
		)
		ORDER BY ingested_ts, transaction_id
	`, tx, runs))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start.String()},
		{Name: "end_date", Value: end.String()},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: query read: %w", err)
	}

	var observations []domain.TransactionRecord
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: iter next: %w", err)
		}
		rec, err := RowToRecord(&row)
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: %w", err)
		}
		observations = append(observations, rec)
	}

	return mergedInRange(observations, start, end), nil
}

// mergedInRange folds observations per id, keeps those whose merged date
// falls in range and orders them by date.
func mergedInRange(observations []domain.TransactionRecord, start, end civil.Date) []domain.TransactionRecord {
	var out []domain.TransactionRecord
	for _, r := range reconcile.Reconcile(observations) {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
