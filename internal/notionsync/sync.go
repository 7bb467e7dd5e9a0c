// Package notionsync mirrors stored transactions into a Notion database.
// Rows are matched by their "Transaction ID" property, so repeated syncs
// update pages in place instead of duplicating them.
package notionsync

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
)

// PageSize is the Notion query page size.
const PageSize = 100

// Options selects what to sync and where.
type Options struct {
	DatabaseID string
	StartDate  civil.Date
	EndDate    civil.Date
	DryRun     bool
}

// Result counts what a sync did.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// SyncTransactions pushes every record in the date range to Notion.
// A failure on a single row is logged and counted; only failures to read
// the source or the database abort the sync.
func SyncTransactions(ctx context.Context, source TransactionSource, notion NotionService, opts Options) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	log.Info().
		Str("start_date", opts.StartDate.String()).
		Str("end_date", opts.EndDate.String()).
		Bool("dry_run", opts.DryRun).
		Msg("Starting transaction sync to Notion")

	records, err := source.QueryTransactionsByDateRange(ctx, opts.StartDate, opts.EndDate)
	if err != nil {
		return res, fmt.Errorf("SyncTransactions: query transactions: %w", err)
	}

	pages, err := queryAllPages(ctx, notion, opts.DatabaseID)
	if err != nil {
		return res, fmt.Errorf("SyncTransactions: %w", err)
	}

	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		if id := extractTransactionID(page); id != "" {
			existing[id] = string(page.ID)
		}
	}

	log.Info().
		Int("transaction_count", len(records)).
		Int("notion_page_count", len(pages)).
		Msg("Loaded transactions and existing pages")

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("SyncTransactions: %w", err)
		}

		pageID, found := existing[r.TransactionID]
		if opts.DryRun {
			if found {
				res.Updated++
			} else {
				res.Created++
			}
			continue
		}

		props := RecordToNotionProperties(r)
		if found {
			if _, err := notion.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("transaction_id", r.TransactionID).Str("page_id", pageID).Msg("Failed to update Notion page")
				res.Failed++
				continue
			}
			res.Updated++
			continue
		}

		page, err := notion.CreatePage(ctx, opts.DatabaseID, props)
		if err != nil {
			log.Warn().Err(err).Str("transaction_id", r.TransactionID).Msg("Failed to create Notion page")
			res.Failed++
			continue
		}
		existing[r.TransactionID] = string(page.ID)
		res.Created++
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("failed", res.Failed).
		Msg("Transaction sync complete")

	return res, nil
}

func queryAllPages(ctx context.Context, notion NotionService, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: PageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notion.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllPages: %w", err)
		}
		all = append(all, resp.Results...)

		if !resp.HasMore {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}
