package postgres

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
	"github.com/Francisnampellah/MeMoney-sub000/internal/reconcile"
)

const upsertSQL = `
	INSERT INTO transactions (
		transaction_id, parsing_run_id,
		status, direction, transaction_type, channel,
		amount, currency, fee, government_levy, balance_after,
		counterparty_name, counterparty_account,
		transaction_date, transaction_time, raw_text
	)
	VALUES (
		$1, $2,
		$3, $4, $5, $6,
		$7::numeric, $8, $9::numeric, $10::numeric, $11::numeric,
		$12, $13,
		$14::date, $15, $16
	)
	ON CONFLICT (transaction_id) DO UPDATE SET
		parsing_run_id       = EXCLUDED.parsing_run_id,
		status               = EXCLUDED.status,
		direction            = EXCLUDED.direction,
		transaction_type     = EXCLUDED.transaction_type,
		channel              = EXCLUDED.channel,
		amount               = EXCLUDED.amount,
		currency             = EXCLUDED.currency,
		fee                  = EXCLUDED.fee,
		government_levy      = EXCLUDED.government_levy,
		balance_after        = EXCLUDED.balance_after,
		counterparty_name    = EXCLUDED.counterparty_name,
		counterparty_account = EXCLUDED.counterparty_account,
		transaction_date     = EXCLUDED.transaction_date,
		transaction_time     = EXCLUDED.transaction_time,
		raw_text             = EXCLUDED.raw_text,
		updated_at           = now()`

// Store implements pipeline.TransactionStore on PostgreSQL.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) StartParsingRun(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO parsing_runs (parsing_run_id, source, started_at, parser_type, parser_version, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, source, time.Now(), pipeline.ParserType, pipeline.ParserVersion, pipeline.RunStatusRunning,
	)
	if err != nil {
		return "", fmt.Errorf("StartParsingRun: inserting run: %w", err)
	}
	return id, nil
}

func (s *Store) MarkParsingRunFailed(ctx context.Context, parsingRunID string, parseErr error) {
	if err := s.finishRun(ctx, parsingRunID, pipeline.RunStatusFailed, pipeline.TruncateError(parseErr)); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("parsing_run_id", parsingRunID).Msg("MarkParsingRunFailed: update failed")
	}
}

func (s *Store) MarkParsingRunSucceeded(ctx context.Context, parsingRunID string) error {
	if err := s.finishRun(ctx, parsingRunID, pipeline.RunStatusSuccess, ""); err != nil {
		return fmt.Errorf("MarkParsingRunSucceeded: %w", err)
	}
	return nil
}

func (s *Store) finishRun(ctx context.Context, parsingRunID, status, errMsg string) error {
	tag, err := s.db.Pool.Exec(ctx,
		`UPDATE parsing_runs SET status = $1, finished_at = $2, error_message = $3 WHERE parsing_run_id = $4`,
		status, time.Now(), errMsg, parsingRunID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("parsing run %s not found", parsingRunID)
	}
	return nil
}

// UpsertTransactions locks any stored rows for the incoming ids, merges each
// incoming record into its stored copy and writes the result, all in one
// transaction.
func (s *Store) UpsertTransactions(ctx context.Context, parsingRunID string, records []domain.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("UpsertTransactions: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	stored, err := lockExisting(ctx, tx, records)
	if err != nil {
		return fmt.Errorf("UpsertTransactions: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		if r.TransactionID == "" {
			continue
		}
		if prev, ok := stored[r.TransactionID]; ok {
			r = reconcile.Merge(prev, r)
		}
		stored[r.TransactionID] = r
		batch.Queue(upsertSQL, upsertArgs(r, parsingRunID)...)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("UpsertTransactions: writing rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("UpsertTransactions: commit: %w", err)
	}
	return nil
}

func lockExisting(ctx context.Context, tx pgx.Tx, records []domain.TransactionRecord) (map[string]domain.TransactionRecord, error) {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.TransactionID != "" {
			ids = append(ids, r.TransactionID)
		}
	}

	rows, err := tx.Query(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE transaction_id = ANY($1) FOR UPDATE`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("locking rows: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]domain.TransactionRecord)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", row.TransactionID, err)
		}
		stored[rec.TransactionID] = rec
	}
	return stored, rows.Err()
}

func (s *Store) QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]domain.TransactionRecord, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT `+selectColumns+`
		 FROM transactions
		 WHERE transaction_date >= $1::date AND transaction_date <= $2::date
		 ORDER BY transaction_date, created_at`,
		start.String(), end.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: query: %w", err)
	}
	defer rows.Close()

	var out []domain.TransactionRecord
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: scan: %w", err)
		}
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: row %s: %w", row.TransactionID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: rows: %w", err)
	}
	return out, nil
}
