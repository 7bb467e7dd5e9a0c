package pipeline

import (
	"context"
	"fmt"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/reconcile"
	"github.com/Francisnampellah/MeMoney-sub000/internal/smsparser"
)

// PipelineStep represents a single step in the ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Source       string // gs:// URI or a caller-chosen label
	ParsingRunID string

	Payload  []byte
	Messages []string

	Parsed   []domain.TransactionRecord
	Rejected int

	Records []domain.TransactionRecord
	Report  reconcile.Report
}

// StartParsingRunStep opens a RUNNING parsing run.
type StartParsingRunStep struct {
	Store TransactionStore
}

func (s *StartParsingRunStep) Execute(ctx context.Context, state *PipelineState) error {
	id, err := s.Store.StartParsingRun(ctx, state.Source)
	if err != nil {
		return err
	}
	state.ParsingRunID = id
	return nil
}

// FetchMessagesStep downloads the export named by state.Source.
// It does nothing when messages were supplied directly.
type FetchMessagesStep struct {
	Storage StorageService
}

func (s *FetchMessagesStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Messages != nil || state.Payload != nil {
		return nil
	}
	data, err := s.Storage.FetchFromGCS(ctx, state.Source)
	if err != nil {
		return err
	}
	state.Payload = data
	return nil
}

// DecodeMessagesStep splits the fetched payload into messages.
type DecodeMessagesStep struct{}

func (s *DecodeMessagesStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Messages != nil {
		return nil
	}
	msgs, err := DecodeMessages(state.Payload)
	if err != nil {
		return err
	}
	state.Messages = msgs
	return nil
}

// ParseMessagesStep builds records from every valid message.
type ParseMessagesStep struct {
	Parser  *smsparser.Parser
	Workers int
}

func (s *ParseMessagesStep) Execute(ctx context.Context, state *PipelineState) error {
	parsed, rejected, err := parseMessages(ctx, s.Parser, state.Messages, s.Workers)
	if err != nil {
		return err
	}
	state.Parsed = parsed
	state.Rejected = rejected
	return nil
}

// ReconcileStep collapses records sharing an identifier.
type ReconcileStep struct{}

func (s *ReconcileStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Records, state.Report = reconcile.ReconcileWithReport(state.Parsed)
	return nil
}

// StoreTransactionsStep upserts the reconciled records.
type StoreTransactionsStep struct {
	Store TransactionStore
}

func (s *StoreTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	if len(state.Records) == 0 {
		return nil
	}
	return s.Store.UpsertTransactions(ctx, state.ParsingRunID, state.Records)
}

// PublishEventsStep announces the stored records. A nil publisher disables it.
type PublishEventsStep struct {
	Publisher EventPublisher
}

func (s *PublishEventsStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Publisher == nil || len(state.Records) == 0 {
		return nil
	}
	return s.Publisher.PublishRecords(ctx, state.Records)
}

// MarkSuccessStep marks the parsing run as SUCCESS.
type MarkSuccessStep struct {
	Store TransactionStore
}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *PipelineState) error {
	return s.Store.MarkParsingRunSucceeded(ctx, state.ParsingRunID)
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	log := logger.FromContext(ctx)
	log.Debug().Int("steps", len(p.steps)).Msg("Pipeline finished")
	return nil
}

// NewMessageIngestionPipeline builds the standard ingestion run.
func NewMessageIngestionPipeline(deps Deps) *Pipeline {
	return NewPipeline(
		&StartParsingRunStep{Store: deps.Store},
		&FetchMessagesStep{Storage: deps.Storage},
		&DecodeMessagesStep{},
		&ParseMessagesStep{Parser: deps.Parser, Workers: deps.Workers},
		&ReconcileStep{},
		&StoreTransactionsStep{Store: deps.Store},
		&PublishEventsStep{Publisher: deps.Publisher},
		&MarkSuccessStep{Store: deps.Store},
	)
}
