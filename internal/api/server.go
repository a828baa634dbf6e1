// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "tender-matching/internal/common/errors"
	"tender-matching/internal/common/logger"
	"tender-matching/internal/common/observability"
	"tender-matching/internal/models"
)

type Ranker interface {
	RankContractorsForTender(ctx context.Context, tenderID string, limit int) ([]models.ScoredContractor, error)
	RankTendersForContractor(ctx context.Context, contractorID string, limit int) ([]models.ScoredTender, error)
}

type Stats interface {
	TendererStats(ctx context.Context, orgID string) (models.TendererStats, error)
	ContractorStats(ctx context.Context, orgID string) (models.ContractorStats, error)
}

type ContractorSearcher interface {
	Search(ctx context.Context, q string, limit int) ([]models.Organization, error)
}

// Pinger is a dependency probed by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Ranker   Ranker
	Stats    Stats
	Search   ContractorSearcher
	Checks   map[string]Pinger
	Obs      *observability.Observability
	Metrics  http.Handler
	ReadyTTL time.Duration
}

type Server struct {
	deps   Deps
	logger logger.Logger
}

func NewServer(deps Deps, log logger.Logger) *Server {
	if deps.Metrics == nil {
		deps.Metrics = promhttp.Handler()
	}
	if deps.ReadyTTL <= 0 {
		deps.ReadyTTL = 2 * time.Second
	}
	return &Server{
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Handler returns the routed API wrapped in request id, logging and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/match/contractors/{tenderId}", s.matchContractors)
	mux.HandleFunc("GET /api/match/tenders/{contractorId}", s.matchTenders)
	mux.HandleFunc("GET /api/stats/tenderer/{organizationId}", s.tendererStats)
	mux.HandleFunc("GET /api/stats/contractor/{organizationId}", s.contractorStats)
	mux.HandleFunc("GET /api/contractors/search", s.searchContractors)

	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /ready", s.ready)
	mux.Handle("GET /metrics", s.deps.Metrics)

	return s.withRequestID(s.withObservation(mux))
}

func (s *Server) matchContractors(w http.ResponseWriter, r *http.Request) {
	limit, stdErr := parseLimit(r)
	if stdErr != nil {
		s.writeError(w, r, http.StatusBadRequest, stdErr)
		return
	}

	out, err := s.deps.Ranker.RankContractorsForTender(r.Context(), r.PathValue("tenderId"), limit)
	if err != nil {
		s.writeFailure(w, r, "rank contractors", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) matchTenders(w http.ResponseWriter, r *http.Request) {
	limit, stdErr := parseLimit(r)
	if stdErr != nil {
		s.writeError(w, r, http.StatusBadRequest, stdErr)
		return
	}

	out, err := s.deps.Ranker.RankTendersForContractor(r.Context(), r.PathValue("contractorId"), limit)
	if err != nil {
		s.writeFailure(w, r, "rank tenders", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) tendererStats(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Stats.TendererStats(r.Context(), r.PathValue("organizationId"))
	if err != nil {
		s.writeFailure(w, r, "tenderer stats", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) contractorStats(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Stats.ContractorStats(r.Context(), r.PathValue("organizationId"))
	if err != nil {
		s.writeFailure(w, r, "contractor stats", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) searchContractors(w http.ResponseWriter, r *http.Request) {
	if s.deps.Search == nil {
		s.writeError(w, r, http.StatusServiceUnavailable,
			apperrors.NewElasticsearchConnectionFailedError(errors.New("search is not configured")))
		return
	}

	limit, stdErr := parseLimit(r)
	if stdErr != nil {
		s.writeError(w, r, http.StatusBadRequest, stdErr)
		return
	}

	out, err := s.deps.Search.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeFailure(w, r, "search contractors", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.deps.ReadyTTL)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := make(map[string]string, len(s.deps.Checks))
	for name, p := range s.deps.Checks {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}

// parseLimit reads ?limit=. Absent means 0, which the engine treats as its default.
func parseLimit(r *http.Request) (int, *apperrors.StandardError) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.NewInvalidInputError("limit must be a non-negative integer")
	}
	return n, nil
}
