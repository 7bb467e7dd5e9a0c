package pipeline

import (
	"context"
	"fmt"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/reconcile"
	"github.com/Francisnampellah/MeMoney-sub000/internal/smsparser"
)

// Deps are the collaborators of an ingestion run. Storage is only needed
// for GCS sources; Publisher and Parser are optional.
type Deps struct {
	Store     TransactionStore
	Storage   StorageService
	Publisher EventPublisher
	Parser    *smsparser.Parser
	Workers   int
}

// IngestResult summarises a finished ingestion run.
type IngestResult struct {
	ParsingRunID string                     `json:"parsing_run_id"`
	Messages     int                        `json:"messages"`
	Rejected     int                        `json:"rejected"`
	Report       reconcile.Report           `json:"report"`
	Records      []domain.TransactionRecord `json:"records"`
}

// IngestMessagesFromGCS ingests one SMS export stored in GCS.
// gcsURI should look like "gs://bucket/path/to/export.json".
func IngestMessagesFromGCS(ctx context.Context, gcsURI string, deps Deps) (*IngestResult, error) {
	if deps.Storage == nil {
		return nil, fmt.Errorf("IngestMessagesFromGCS: no storage service configured")
	}
	res, err := run(ctx, &PipelineState{Source: gcsURI}, deps)
	if err != nil {
		return nil, fmt.Errorf("IngestMessagesFromGCS: %w", err)
	}
	return res, nil
}

// IngestMessages ingests messages already in memory. source labels the run.
func IngestMessages(ctx context.Context, source string, raws []string, deps Deps) (*IngestResult, error) {
	if raws == nil {
		raws = []string{}
	}
	res, err := run(ctx, &PipelineState{Source: source, Messages: raws}, deps)
	if err != nil {
		return nil, fmt.Errorf("IngestMessages: %w", err)
	}
	return res, nil
}

func run(ctx context.Context, state *PipelineState, deps Deps) (*IngestResult, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("no transaction store configured")
	}

	log := logger.FromContext(ctx).With().Str("source", state.Source).Logger()
	ctx = logger.WithContext(ctx, log)

	if err := NewMessageIngestionPipeline(deps).Execute(ctx, state); err != nil {
		if state.ParsingRunID != "" {
			deps.Store.MarkParsingRunFailed(ctx, state.ParsingRunID, err)
		}
		log.Error().Err(err).Str("parsing_run_id", state.ParsingRunID).Msg("Ingestion failed")
		return nil, err
	}

	log.Info().
		Str("parsing_run_id", state.ParsingRunID).
		Int("messages", len(state.Messages)).
		Int("rejected", state.Rejected).
		Int("duplicates_collapsed", state.Report.DuplicatesCollapsed).
		Int("records", len(state.Records)).
		Msg("Ingestion succeeded")

	return &IngestResult{
		ParsingRunID: state.ParsingRunID,
		Messages:     len(state.Messages),
		Rejected:     state.Rejected,
		Report:       state.Report,
		Records:      state.Records,
	}, nil
}
