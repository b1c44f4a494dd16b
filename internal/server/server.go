// Package server exposes the orchestration facade over HTTP. Routes and
// status codes follow the public API: 200 for tagged success results, 400 for
// caller mistakes (uninitialized accounts, missing amount), 500 for workflow
// and lookup failures. Secret seeds never appear in any response body.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/treatbank/mintd/internal/service"
)

// Server is the HTTP surface over the facade.
type Server struct {
	svc      *service.Service
	log      *slog.Logger
	timeout  time.Duration
	gatherer prometheus.Gatherer
}

// New creates the HTTP server. gatherer may be nil to disable /metrics.
func New(svc *service.Service, log *slog.Logger, timeout time.Duration, gatherer prometheus.Gatherer) *Server {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{svc: svc, log: log, timeout: timeout, gatherer: gatherer}
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /setup-accounts", s.handleSetupAccounts)
	mux.HandleFunc("POST /issue-asset", s.handleIssueAsset)
	mux.HandleFunc("GET /check-balance/{account}", s.handleCheckBalance)
	mux.HandleFunc("GET /check-xlm-balance/{account}", s.handleCheckNativeBalance)
	mux.HandleFunc("GET /issuances", s.handleIssuances)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "mintd - Stellar custom asset issuance API",
		"endpoints": map[string]string{
			"/setup-accounts":              "GET - generates and funds (testnet) issuer and distributor accounts",
			"/issue-asset":                 "POST {\"amount\": \"1000\"} - issues the custom asset from issuer to distributor",
			"/check-balance/<account>":     "GET - balance of the custom asset for the account",
			"/check-xlm-balance/<account>": "GET - XLM balance for the account",
			"/issuances":                   "GET - recorded issuance runs, newest first",
		},
		"notes": "run /setup-accounts first unless seeds are configured",
	})
}

func (s *Server) handleSetupAccounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.bound(r.Context())
	defer cancel()

	result := s.svc.SetupAccounts(ctx)
	status := http.StatusOK
	if result.Status != service.StatusSuccess {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

func (s *Server) handleIssueAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.bound(r.Context())
	defer cancel()

	var body struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Amount == "" {
		writeError(w, http.StatusBadRequest, "missing 'amount' in request body")
		return
	}

	result, err := s.svc.IssueAsset(ctx, body.Amount)
	if err != nil {
		if errors.Is(err, service.ErrNotInitialized) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if result.Status != service.StatusSuccess {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

func (s *Server) handleCheckBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.bound(r.Context())
	defer cancel()

	result, err := s.svc.CheckBalance(ctx, r.PathValue("account"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCheckNativeBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.bound(r.Context())
	defer cancel()

	result, err := s.svc.CheckNativeBalance(ctx, r.PathValue("account"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIssuances(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.bound(r.Context())
	defer cancel()

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := s.svc.ListIssuances(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    service.StatusSuccess,
		"issuances": records,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "mintd"})
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNotInitialized) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Covers nonexistent accounts and transport failures alike; the body
	// carries the distinction.
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) bound(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.timeout)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"status":  service.StatusError,
		"message": message,
	})
}
