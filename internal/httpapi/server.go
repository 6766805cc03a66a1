package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	apimw "github.com/hamed0406/healthchecker/internal/httpapi/middleware"
	"github.com/hamed0406/healthchecker/internal/repo"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500

	DefaultRatePerMin = 120
	DefaultBurst      = 60
)

// Server exposes the checker's results over a read-only JSON API.
type Server struct {
	Logger  *zap.Logger
	Results repo.ResultStore
	URLs    []string
}

func NewServer(l *zap.Logger, rs repo.ResultStore, urls []string) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Results: rs, URLs: urls}
}

func (s *Server) Router(reqPerMin, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(apimw.RateLimit(reqPerMin, burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/results/latest", s.handleLatest)
		r.Get("/targets", s.handleTargets)
		r.Get("/history", s.handleHistory)
	})
	return r
}

type batchView struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Up         int              `json:"up"`
	Down       int              `json:"down"`
	Outcomes   []domain.Outcome `json:"outcomes"`
}

type targetView struct {
	URL    string          `json:"url"`
	Latest *domain.Outcome `json:"latest"`
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	b, err := s.Results.Latest(r.Context())
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no results yet")
		return
	}
	if err != nil {
		s.Logger.Error("api_latest_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load results")
		return
	}

	outcomes := b.Outcomes
	if outcomes == nil {
		outcomes = []domain.Outcome{}
	}
	writeJSON(w, http.StatusOK, batchView{
		ID:         b.ID,
		StartedAt:  b.StartedAt,
		FinishedAt: b.FinishedAt,
		Up:         b.Up(),
		Down:       b.Down(),
		Outcomes:   outcomes,
	})
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	b, err := s.Results.Latest(r.Context())
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		s.Logger.Error("api_targets_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load results")
		return
	}

	// first outcome per URL wins when a URL is listed twice
	latest := make(map[string]domain.Outcome, len(b.Outcomes))
	for _, o := range b.Outcomes {
		if _, ok := latest[o.URL()]; !ok {
			latest[o.URL()] = o
		}
	}

	out := make([]targetView, 0, len(s.URLs))
	for _, u := range s.URLs {
		tv := targetView{URL: u}
		if o, ok := latest[u]; ok {
			tv.Latest = &o
		}
		out = append(out, tv)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	hist, err := s.Results.History(r.Context(), u, limit)
	if err != nil {
		s.Logger.Error("api_history_error", zap.String("url", u), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	if hist == nil {
		hist = []domain.Outcome{}
	}
	writeJSON(w, http.StatusOK, hist)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
