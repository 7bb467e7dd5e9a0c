// Package handlers implements the HTTP endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Francisnampellah/MeMoney-sub000/internal/analytics"
	"github.com/Francisnampellah/MeMoney-sub000/internal/api/middleware"
	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
	"github.com/Francisnampellah/MeMoney-sub000/internal/gcsuploader"
	"github.com/Francisnampellah/MeMoney-sub000/internal/jobs"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
	"github.com/Francisnampellah/MeMoney-sub000/internal/smsparser"
)

// MaxMessagesPerRequest bounds synchronous parse requests.
const MaxMessagesPerRequest = 10000

const maxBodyBytes = 8 << 20

type messagesRequest struct {
	Messages []string `json:"messages"`
}

func decodeMessages(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req messagesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if len(req.Messages) > MaxMessagesPerRequest {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Too many messages")
		return nil, false
	}
	return req.Messages, true
}

// MessagesHandler parses messages synchronously.
type MessagesHandler struct {
	parser  *smsparser.Parser
	workers int
}

func NewMessagesHandler(parser *smsparser.Parser, workers int) *MessagesHandler {
	return &MessagesHandler{parser: parser, workers: workers}
}

// Parse handles POST /api/messages/parse.
func (h *MessagesHandler) Parse(w http.ResponseWriter, r *http.Request) {
	raws, ok := decodeMessages(w, r)
	if !ok {
		return
	}

	res, err := pipeline.RunBatch(r.Context(), h.parser, raws, h.workers)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to parse messages")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to parse messages")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"transactions": res.Records,
		"count":        len(res.Records),
		"accepted":     res.Accepted,
		"rejected":     res.Rejected,
		"report":       res.Report,
	})
}

// SummaryResponse is the body of POST /api/messages/summary.
type SummaryResponse struct {
	Summary        analytics.Summary  `json:"summary"`
	ByType         []analytics.Bucket `json:"by_type"`
	ByCounterparty []analytics.Bucket `json:"by_counterparty"`
	Daily          []analytics.Day    `json:"daily"`
}

// Summary handles POST /api/messages/summary.
func (h *MessagesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	raws, ok := decodeMessages(w, r)
	if !ok {
		return
	}

	res, err := pipeline.RunBatch(r.Context(), h.parser, raws, h.workers)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to parse messages")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to parse messages")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, newSummaryResponse(analytics.NewSnapshot(res.Records)))
}

func newSummaryResponse(s *analytics.Snapshot) SummaryResponse {
	return SummaryResponse{
		Summary:        s.Summary(),
		ByType:         s.ByType(),
		ByCounterparty: s.ByCounterparty(),
		Daily:          s.Daily(),
	}
}

// BatchesHandler enqueues ingestion of stored exports.
type BatchesHandler struct {
	publisher jobs.Publisher
}

func NewBatchesHandler(publisher jobs.Publisher) *BatchesHandler {
	return &BatchesHandler{publisher: publisher}
}

// Create handles POST /api/batches.
func (h *BatchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GCSURI string `json:"gcs_uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, _, err := gcsuploader.ParseURI(req.GCSURI); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri must look like gs://bucket/object")
		return
	}

	log := logger.FromContext(r.Context())

	job := &jobs.IngestJob{GCSURI: req.GCSURI}
	if err := h.publisher.PublishIngest(r.Context(), job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue ingestion job")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue ingestion job")
		return
	}

	log.Info().Str("job_id", job.JobID).Str("gcs_uri", job.GCSURI).Msg("Ingestion job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": job.GCSURI,
		"status":  string(job.Status),
	})
}

// TransactionReader is the read side of a store.
type TransactionReader interface {
	QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]domain.TransactionRecord, error)
}

// TransactionsHandler serves stored records.
type TransactionsHandler struct {
	store TransactionReader
	now   func() time.Time
}

func NewTransactionsHandler(store TransactionReader) *TransactionsHandler {
	return &TransactionsHandler{store: store, now: time.Now}
}

// List handles GET /api/transactions. The range defaults to the last year.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	start, err := dateParam(r, "start_date", civil.DateOf(now.AddDate(-1, 0, 0)))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
		return
	}
	end, err := dateParam(r, "end_date", civil.DateOf(now))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
		return
	}
	if end.Before(start) {
		middleware.WriteError(w, http.StatusBadRequest, "end_date is before start_date")
		return
	}

	records, err := h.store.QueryTransactionsByDateRange(r.Context(), start, end)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}
	if records == nil {
		records = []domain.TransactionRecord{}
	}
	middleware.WriteJSON(w, http.StatusOK, records)
}

func dateParam(r *http.Request, name string, def civil.Date) (civil.Date, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return civil.ParseDate(v)
}

// JobsHandler reports ingestion job state.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// Get handles GET /api/jobs/{id}.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	job, err := h.store.GetJob(r.Context(), jobID)
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	case err != nil:
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// List handles GET /api/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		GCSURI: query.Get("gcs_uri"),
		Status: jobs.JobStatus(query.Get("status")),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil {
		filter.Offset = offset
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"jobs":  list,
		"count": len(list),
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
