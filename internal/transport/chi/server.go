package chi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/domain"
	domest "github.com/kailas-cloud/homedex/internal/domain/estimate"
	logpkg "github.com/kailas-cloud/homedex/internal/logger"
	"github.com/kailas-cloud/homedex/internal/metrics"
	cataloguc "github.com/kailas-cloud/homedex/internal/usecase/catalog"
	estimateuc "github.com/kailas-cloud/homedex/internal/usecase/estimate"
	healthuc "github.com/kailas-cloud/homedex/internal/usecase/health"
	insightuc "github.com/kailas-cloud/homedex/internal/usecase/insight"
	nearbyuc "github.com/kailas-cloud/homedex/internal/usecase/nearby"
)

// maxEstimateBody caps the estimate request body.
const maxEstimateBody = 16 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Recommender ranks similar properties. Satisfied by the recommend service
// and its caching decorator.
type Recommender interface {
	Recommend(ctx context.Context, property string, topN int) ([]domain.Recommendation, error)
}

// Services groups the use cases served over HTTP.
// Estimate can be nil when no pipeline is configured.
type Services struct {
	Recommend   Recommender
	DefaultTopN int
	Nearby      *nearbyuc.Service
	Estimate    *estimateuc.Service
	Catalog     *cataloguc.Service
	Insight     *insightuc.Service
	Health      *healthuc.Service
}

// Server serves the dashboard JSON API.
type Server struct {
	svc           Services
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	if svc.DefaultTopN <= 0 {
		svc.DefaultTopN = 5
	}
	s := &Server{svc: svc, logger: logger}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, CodeInvalidArgument),
		sentinelHandler(domain.ErrInference, http.StatusUnprocessableEntity, CodeInferenceFailed),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/properties", s.ListProperties)
		r.Get("/properties/{name}/recommendations", s.Recommend)
		r.Get("/locations", s.ListLocations)
		r.Get("/locations/{name}/nearby", s.Nearby)
		r.Get("/estimate/levels", s.EstimateLevels)
		r.Post("/estimate", s.Estimate)
		r.Get("/insights/sectors", s.SectorSummaries)
		r.Get("/insights/sectors/{sector}/describe", s.DescribeSector)
		r.Get("/insights/bedrooms", s.BedroomDistribution)
		r.Get("/insights/furnishing", s.FurnishingDistribution)
	})
}

// Handler returns a router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// ListProperties handles GET /api/v1/properties.
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NameList{Items: s.svc.Catalog.Properties(r.Context())})
}

// Recommend handles GET /api/v1/properties/{name}/recommendations.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var name string
	if !bindPath(w, r, "name", &name) {
		return
	}
	topN := s.svc.DefaultTopN
	var topNParam *int
	if !bindQuery(w, r, "top_n", &topNParam) {
		return
	}
	if topNParam != nil {
		topN = *topNParam
	}

	recs, err := s.svc.Recommend.Recommend(r.Context(), name, topN)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	metrics.ObserveResults("recommend", len(recs))
	writeJSON(w, http.StatusOK, recommendationsToResponse(name, recs))
}

// ListLocations handles GET /api/v1/locations.
func (s *Server) ListLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NameList{Items: s.svc.Catalog.Locations(r.Context())})
}

// Nearby handles GET /api/v1/locations/{name}/nearby.
func (s *Server) Nearby(w http.ResponseWriter, r *http.Request) {
	var name string
	if !bindPath(w, r, "name", &name) {
		return
	}
	var radius *float64
	if !bindQuery(w, r, "radius_km", &radius) {
		return
	}
	if radius == nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "radius_km is required")
		return
	}

	props, err := s.svc.Nearby.Nearby(r.Context(), name, *radius)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	metrics.ObserveResults("nearby", len(props))
	writeJSON(w, http.StatusOK, nearbyToResponse(name, *radius, props))
}

// EstimateLevels handles GET /api/v1/estimate/levels.
func (s *Server) EstimateLevels(w http.ResponseWriter, r *http.Request) {
	levels := s.svc.Catalog.Levels(r.Context())
	writeJSON(w, http.StatusOK, LevelsResponse{Levels: levels})
}

// Estimate handles POST /api/v1/estimate.
func (s *Server) Estimate(w http.ResponseWriter, r *http.Request) {
	if s.svc.Estimate == nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: no price pipeline configured", domain.ErrNotImplemented))
		return
	}

	var req domest.Features
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEstimateBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rng, err := s.svc.Estimate.Estimate(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, estimateToResponse(rng))
}

// SectorSummaries handles GET /api/v1/insights/sectors.
func (s *Server) SectorSummaries(w http.ResponseWriter, r *http.Request) {
	sums, err := s.svc.Insight.SectorSummaries(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sectorSummariesToResponse(sums))
}

// DescribeSector handles GET /api/v1/insights/sectors/{sector}/describe.
func (s *Server) DescribeSector(w http.ResponseWriter, r *http.Request) {
	var sector string
	if !bindPath(w, r, "sector", &sector) {
		return
	}
	var ptype *string
	if !bindQuery(w, r, "property_type", &ptype) {
		return
	}
	if ptype == nil || *ptype == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "property_type is required")
		return
	}

	desc, err := s.svc.Insight.Describe(r.Context(), sector, *ptype)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, describeToResponse(sector, *ptype, desc))
}

// BedroomDistribution handles GET /api/v1/insights/bedrooms.
func (s *Server) BedroomDistribution(w http.ResponseWriter, r *http.Request) {
	sector := insightuc.Overall
	var param *string
	if !bindQuery(w, r, "sector", &param) {
		return
	}
	if param != nil && *param != "" {
		sector = *param
	}

	buckets, err := s.svc.Insight.BedroomDistribution(r.Context(), sector)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bucketsToResponse(sector, buckets))
}

// FurnishingDistribution handles GET /api/v1/insights/furnishing.
func (s *Server) FurnishingDistribution(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.svc.Insight.FurnishingDistribution(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bucketsToResponse(insightuc.Overall, buckets))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindPath binds a required path parameter. Writes a 400 and returns false on failure.
func bindPath(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid format for parameter "+name+": "+err.Error())
		return false
	}
	return true
}

// bindQuery binds an optional query parameter. Writes a 400 and returns false on failure.
func bindQuery(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid format for parameter "+name+": "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// clientMessage returns the error text for a client-facing error; anything
// that is not a known domain failure becomes "internal error".
func clientMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidArgument,
		domain.ErrInference,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	msg := clientMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
