package pipeline

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// StorageService fetches raw message exports.
type StorageService interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}

// TransactionStore persists parsing runs and reconciled records.
type TransactionStore interface {
	// StartParsingRun records a RUNNING run for source and returns its id.
	StartParsingRun(ctx context.Context, source string) (string, error)

	// MarkParsingRunFailed sets the run to FAILED. Errors are logged, not returned.
	MarkParsingRunFailed(ctx context.Context, parsingRunID string, parseErr error)

	// MarkParsingRunSucceeded sets the run to SUCCESS.
	MarkParsingRunSucceeded(ctx context.Context, parsingRunID string) error

	// UpsertTransactions stores records. A record whose id is already stored
	// is merged with the stored copy, stored side first.
	UpsertTransactions(ctx context.Context, parsingRunID string, records []domain.TransactionRecord) error

	// QueryTransactionsByDateRange returns records dated within [start, end].
	QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]domain.TransactionRecord, error)
}

// EventPublisher announces reconciled records to downstream consumers.
type EventPublisher interface {
	PublishRecords(ctx context.Context, records []domain.TransactionRecord) error
}
