// Package api exposes the report pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/engine"
	"github.com/user/vulnrecord/pkg/schema"
	"github.com/user/vulnrecord/pkg/source"
	"github.com/user/vulnrecord/pkg/store"
)

// MaxBodyBytes caps the size of an uploaded scan report.
const MaxBodyBytes = 8 << 20

type Server struct {
	r        *chi.Mux
	ingestor *engine.Ingestor
	store    store.Store
	gatherer prometheus.Gatherer
	log      *zap.SugaredLogger
	maxBody  int64
}

// NewServer builds the router. gatherer may be nil, in which case /metrics
// is not mounted.
func NewServer(in *engine.Ingestor, st store.Store, gatherer prometheus.Gatherer, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		r:        chi.NewRouter(),
		ingestor: in,
		store:    st,
		gatherer: gatherer,
		log:      log,
		maxBody:  MaxBodyBytes,
	}

	s.r.Use(middleware.RequestID)
	s.r.Use(middleware.RealIP)
	s.r.Use(middleware.Recoverer)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.Get("/healthz", s.healthz)

	s.r.Route("/reports", func(r chi.Router) {
		r.Post("/", s.postReport)
		r.Get("/", s.listReports)
		r.Get("/{id}", s.getReport)
	})

	if s.gatherer != nil {
		s.r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) Handler() http.Handler { return s.r }

// healthz pings the store when it supports it (the Postgres store does).
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if hc, ok := s.store.(interface{ Health(context.Context) error }); ok {
		if err := hc.Health(r.Context()); err != nil {
			s.log.Warnw("Health check failed", "error", err)
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte("ok"))
}

func (s *Server) postReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "report too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	out, err := s.ingestor.Ingest(r.Context(), source.TextSource(body))
	if err != nil {
		var verr *schema.ValidationError
		switch {
		case errors.Is(err, source.ErrSourceUnavailable):
			writeError(w, http.StatusBadRequest, "empty scan report")
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": verr.Message,
				"field": verr.Field,
			})
		default:
			s.log.Errorw("Ingest failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store report")
		}
		return
	}

	skipped := make([]string, 0, len(out.Result.Skipped))
	for _, ce := range out.Result.Skipped {
		skipped = append(skipped, ce.Error())
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"document":       out.Document,
		"skipped_chunks": skipped,
	})
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		s.log.Errorw("List failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.log.Errorw("Get failed", "report_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
