package notionsync

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// NotionService is the part of the Notion API the sync uses.
type NotionService interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// TransactionSource supplies the reconciled records to push.
// Every pipeline.TransactionStore satisfies it.
type TransactionSource interface {
	QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]domain.TransactionRecord, error)
}
