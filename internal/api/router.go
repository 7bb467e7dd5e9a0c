// Package api assembles the HTTP router.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Francisnampellah/MeMoney-sub000/internal/api/handlers"
	"github.com/Francisnampellah/MeMoney-sub000/internal/api/middleware"
	"github.com/Francisnampellah/MeMoney-sub000/internal/jobs"
	"github.com/Francisnampellah/MeMoney-sub000/internal/smsparser"
)

// Deps are the collaborators behind the routes.
type Deps struct {
	Parser    *smsparser.Parser
	Workers   int
	Store     handlers.TransactionReader
	Publisher jobs.Publisher
	Jobs      jobs.JobStore
	Log       zerolog.Logger
}

// NewRouter wires every route and the middleware chain.
func NewRouter(deps Deps) http.Handler {
	messages := handlers.NewMessagesHandler(deps.Parser, deps.Workers)
	batches := handlers.NewBatchesHandler(deps.Publisher)
	transactions := handlers.NewTransactionsHandler(deps.Store)
	jobsHandler := handlers.NewJobsHandler(deps.Jobs, deps.Log)

	r := mux.NewRouter()
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/messages/parse", messages.Parse).Methods(http.MethodPost)
	api.HandleFunc("/messages/summary", messages.Summary).Methods(http.MethodPost)
	api.HandleFunc("/batches", batches.Create).Methods(http.MethodPost)
	api.HandleFunc("/jobs", jobsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", jobsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/transactions", transactions.List).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})

	return middleware.Recovery(deps.Log)(
		middleware.RequestID(
			middleware.Logger(deps.Log)(
				middleware.CORS(r),
			),
		),
	)
}
