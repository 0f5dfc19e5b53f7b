package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	"github.com/couchcryptid/grid-reliability-etl/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotService provides the current metrics snapshot and recomputes it on demand.
type SnapshotService interface {
	sharedobs.ReadinessChecker
	Snapshot() *domain.Snapshot
	Refresh(ctx context.Context) (*domain.Snapshot, error)
}

// Server exposes health, readiness, metrics, and the reliability query API.
type Server struct {
	httpServer *http.Server
	svc        SnapshotService
	validate   *validator.Validate
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and /api/v1 routes.
func NewServer(addr string, svc SnapshotService, metrics *observability.Metrics, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:      svc,
		validate: newValidator(),
		metrics:  metrics,
		logger:   logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(svc))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/periods", s.handlePeriods)
		r.Get("/periods/{period}/feeders", s.handleFeeders)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/tables/{granularity}", s.handleTable)
		r.Post("/refresh", s.handleRefresh)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// metricsQuery holds the selection parameters of GET /api/v1/metrics.
type metricsQuery struct {
	Granularity string `json:"granularity" validate:"required,oneof=daily weekly monthly"`
	Period      string `json:"period" validate:"required"`
	Feeder      string `json:"feeder" validate:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type periodsResponse struct {
	Periods    []string  `json:"periods"`
	ComputedAt time.Time `json:"computed_at"`
}

type feedersResponse struct {
	Period  string   `json:"period"`
	Feeders []string `json:"feeders"`
}

type tableResponse struct {
	Granularity domain.Granularity  `json:"granularity"`
	Rows        []domain.MetricsRow `json:"rows"`
	ComputedAt  time.Time           `json:"computed_at"`
}

type refreshResponse struct {
	Records    int             `json:"records"`
	Stats      domain.RunStats `json:"stats"`
	ComputedAt time.Time       `json:"computed_at"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, periodsResponse{
		Periods:    snap.Dataset.PeriodLabels(),
		ComputedAt: snap.ComputedAt,
	})
}

func (s *Server) handleFeeders(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	period := chi.URLParam(r, "period")
	feeders := snap.Dataset.FeederNames(period)
	if len(feeders) == 0 {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("unknown period %q", period))
		return
	}
	render.JSON(w, r, feedersResponse{Period: period, Feeders: feeders})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := metricsQuery{
		Granularity: strings.ToLower(strings.TrimSpace(params.Get("granularity"))),
		Period:      params.Get("period"),
		Feeder:      domain.NormalizeFeederName(params.Get("feeder")),
	}
	if err := s.validate.Struct(q); err != nil {
		s.metrics.Queries.WithLabelValues("unknown", "invalid").Inc()
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	g := domain.Granularity(q.Granularity)
	result, err := snap.Tables.Filter(g, q.Period, q.Feeder)
	switch {
	case errors.Is(err, domain.ErrNoMatchingData):
		s.metrics.Queries.WithLabelValues(string(g), "no_data").Inc()
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.metrics.Queries.WithLabelValues(string(g), "invalid").Inc()
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.metrics.Queries.WithLabelValues(string(g), "hit").Inc()
	render.JSON(w, r, result)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	g, err := domain.ParseGranularity(chi.URLParam(r, "granularity"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	rows := snap.Tables.Table(g)
	if rows == nil {
		rows = []domain.MetricsRow{}
	}
	render.JSON(w, r, tableResponse{Granularity: g, Rows: rows, ComputedAt: snap.ComputedAt})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Refresh(r.Context())
	if err != nil {
		s.logger.Error("refresh failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrNoPeriodsAvailable) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, r, status, err.Error())
		return
	}
	render.JSON(w, r, refreshResponse{
		Records:    snap.Dataset.Len(),
		Stats:      snap.Stats,
		ComputedAt: snap.ComputedAt,
	})
}

// snapshot returns the current snapshot or writes 503 when none exists yet.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, bool) {
	snap := s.svc.Snapshot()
	if snap == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no reliability snapshot computed yet")
		return nil, false
	}
	return snap, true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}
