package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
)

// StartParsingRun inserts a parsing_runs row with status=RUNNING and returns
// the generated parsing_run_id.
func (s *Store) StartParsingRun(ctx context.Context, source string) (string, error) {
	parsingRunID := uuid.NewString()

	q := s.client.Query(fmt.Sprintf(`
		INSERT %s (
			parsing_run_id,
			source,
			started_ts,
			parser_type,
			parser_version,
			status
		)
		VALUES (
			@parsing_run_id,
			@source,
			@started_ts,
			@parser_type,
			@parser_version,
			@status
		)
	`, s.table(parsingRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "parsing_run_id", Value: parsingRunID},
		{Name: "source", Value: source},
		{Name: "started_ts", Value: s.now()},
		{Name: "parser_type", Value: pipeline.ParserType},
		{Name: "parser_version", Value: pipeline.ParserVersion},
		{Name: "status", Value: pipeline.RunStatusRunning},
	}

	if err := runDML(ctx, q); err != nil {
		return "", fmt.Errorf("StartParsingRun: %w", err)
	}
	return parsingRunID, nil
}

// MarkParsingRunFailed sets status=FAILED, finished_ts and error_message.
// Failures are logged; the caller is already handling an error.
func (s *Store) MarkParsingRunFailed(ctx context.Context, parsingRunID string, parseErr error) {
	if err := s.finishRun(ctx, parsingRunID, pipeline.RunStatusFailed, pipeline.TruncateError(parseErr)); err != nil {
		log := logger.FromContext(ctx)
		log.Error().
			Err(err).
			Str("parsing_run_id", parsingRunID).
			Msg("MarkParsingRunFailed: update failed")
	}
}

// MarkParsingRunSucceeded sets status=SUCCESS and finished_ts.
func (s *Store) MarkParsingRunSucceeded(ctx context.Context, parsingRunID string) error {
	if err := s.finishRun(ctx, parsingRunID, pipeline.RunStatusSuccess, ""); err != nil {
		return fmt.Errorf("MarkParsingRunSucceeded: %w", err)
	}
	return nil
}

func (s *Store) finishRun(ctx context.Context, parsingRunID, status, errMsg string) error {
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE parsing_run_id = @parsing_run_id
	`, s.table(parsingRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: status},
		{Name: "finished_ts", Value: s.now()},
		{Name: "error_message", Value: errMsg},
		{Name: "parsing_run_id", Value: parsingRunID},
	}
	return runDML(ctx, q)
}
