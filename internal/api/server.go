// Package api implements the read-only HTTP status API of the verifier
// daemon.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trustgate/attest/pkg/netutil"
	"github.com/trustgate/attest/pkg/store"
)

// Server is the HTTP status API server. It exposes persisted
// attestation results and the audit log; it takes no part in the
// handshakes themselves.
type Server struct {
	store  *store.Store
	logger *slog.Logger
}

// NewServer creates a new API server. If logger is nil, slog.Default()
// is used.
func NewServer(s *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: s, logger: logger}
}

// Router builds the chi router for the status API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Get("/healthz", s.handleHealth)
	r.Get("/v1/results", s.handleListResults)
	r.Get("/v1/results/{endpoint}", s.handleGetResult)
	r.Get("/v1/audit", s.handleAuditTail)
	return r
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"client", netutil.ClientIP(r),
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

// resultResponse is the JSON shape of one attestation result.
type resultResponse struct {
	Endpoint         string    `json:"endpoint"`
	SessionID        string    `json:"sessionId"`
	Recommendation   string    `json:"recommendation"`
	Evaluation       string    `json:"evaluation"`
	Reason           string    `json:"reason,omitempty"`
	ReasonLang       string    `json:"reasonLang,omitempty"`
	MeasurementError bool      `json:"measurementError"`
	RequestsIssued   int       `json:"requestsIssued"`
	RequestsResolved int       `json:"requestsResolved"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toResultResponse(r *store.Result) resultResponse {
	return resultResponse{
		Endpoint:         r.Endpoint,
		SessionID:        r.SessionID,
		Recommendation:   r.Recommendation,
		Evaluation:       r.Evaluation,
		Reason:           r.Reason,
		ReasonLang:       r.ReasonLang,
		MeasurementError: r.MeasurementError,
		RequestsIssued:   r.RequestsIssued,
		RequestsResolved: r.RequestsResolved,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	var results []*store.Result
	var err error

	if rec := r.URL.Query().Get("recommendation"); rec != "" {
		results, err = s.store.ListResultsByRecommendation(rec)
	} else {
		results, err = s.store.ListResults()
	}
	if err != nil {
		s.internalError(w, "list results", err)
		return
	}

	out := make([]resultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, toResultResponse(res))
	}
	s.writeJSON(w, out)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	endpoint := chi.URLParam(r, "endpoint")

	result, err := s.store.GetResult(endpoint)
	if errors.Is(err, store.ErrResultNotFound) {
		http.Error(w, "result not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, "get result", err)
		return
	}
	s.writeJSON(w, toResultResponse(result))
}

func (s *Server) handleAuditTail(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.store.ListAuditEntries(limit)
	if err != nil {
		s.internalError(w, "list audit entries", err)
		return
	}
	s.writeJSON(w, entries)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("api request failed", "op", op, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
