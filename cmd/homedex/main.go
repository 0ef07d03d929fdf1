package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/homedex/internal/artifact"
	"github.com/kailas-cloud/homedex/internal/config"
	dbRedis "github.com/kailas-cloud/homedex/internal/db/redis"
	logpkg "github.com/kailas-cloud/homedex/internal/logger"
	"github.com/kailas-cloud/homedex/internal/metrics"
	"github.com/kailas-cloud/homedex/internal/pipeline/linear"
	"github.com/kailas-cloud/homedex/internal/pipeline/remote"
	"github.com/kailas-cloud/homedex/internal/repository/reccache"
	chiTransport "github.com/kailas-cloud/homedex/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/homedex/internal/usecase/catalog"
	estimateuc "github.com/kailas-cloud/homedex/internal/usecase/estimate"
	healthuc "github.com/kailas-cloud/homedex/internal/usecase/health"
	insightuc "github.com/kailas-cloud/homedex/internal/usecase/insight"
	nearbyuc "github.com/kailas-cloud/homedex/internal/usecase/nearby"
	recommenduc "github.com/kailas-cloud/homedex/internal/usecase/recommend"
	"github.com/kailas-cloud/homedex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Encoding,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting homedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("artifacts_dir", cfg.Artifacts.Dir),
		zap.String("pipeline", cfg.Estimate.Pipeline),
	)

	metrics.RegisterHTTPMetrics()
	metrics.RegisterCatalogMetrics()
	metrics.RegisterPipelineMetrics()

	// Every artifact is loaded before the server listens; handlers only read.
	bundle, err := artifact.Load(cfg.Artifacts.Dir)
	if err != nil {
		logger.Fatal("Failed to load artifact bundle", zap.Error(err))
	}
	metrics.CatalogSize.WithLabelValues("properties").Set(float64(bundle.Catalog.Len()))
	metrics.CatalogSize.WithLabelValues("locations").Set(float64(len(bundle.Distances.Locations())))
	metrics.CatalogSize.WithLabelValues("listings").Set(float64(len(bundle.Listings)))
	logger.Info("Artifact bundle loaded",
		zap.Int("properties", bundle.Catalog.Len()),
		zap.Int("locations", len(bundle.Distances.Locations())),
		zap.Int("listings", len(bundle.Listings)),
	)

	weights := *cfg.Recommend.Weights
	recSvc, err := recommenduc.New(&bundle.Catalog, bundle.Matrices, weights)
	if err != nil {
		logger.Fatal("Failed to create recommender", zap.Error(err))
	}

	ctx := context.Background()

	// Pass nil interfaces (not typed nil pointers) to health when a component is off.
	estSvc, pipelineChecker := buildEstimator(ctx, &cfg, logger)

	var recommender chiTransport.Recommender = recSvc
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache",
			zap.String("driver", cfg.Cache.Driver),
			zap.Strings("addrs", cfg.Cache.Addrs),
		)

		// Namespace by bundle and weights so a new bundle or weighting never reads stale entries.
		abs, _ := filepath.Abs(cfg.Artifacts.Dir)
		recommender = reccache.New(recSvc, store, reccache.Config{
			TTL:        time.Duration(cfg.Cache.TTLSec) * time.Second,
			Namespace:  abs + "|" + weights.Key(),
			CacheTotal: metrics.RecommendCacheTotal,
			Logger:     logger,
		})
		cachePinger = store
	}

	var levels cataloguc.LevelSource
	if estSvc != nil {
		levels = estSvc
	}

	server := chiTransport.NewServer(chiTransport.Services{
		Recommend:   recommender,
		DefaultTopN: cfg.Recommend.DefaultTopN,
		Nearby:      nearbyuc.New(&bundle.Catalog, &bundle.Distances),
		Estimate:    estSvc,
		Catalog:     cataloguc.New(&bundle.Catalog, &bundle.Distances, levels),
		Insight:     insightuc.New(bundle.Listings),
		Health:      healthuc.New(cachePinger, pipelineChecker),
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEstimator creates the price pipeline selected by config.
// Returns a nil service for the "none" pipeline, and a health checker only
// for pipelines that can become unavailable.
func buildEstimator(
	ctx context.Context, cfg *config.Config, logger *zap.Logger,
) (*estimateuc.Service, healthuc.PipelineChecker) {
	var (
		pipeline estimateuc.Pipeline
		checker  healthuc.PipelineChecker
	)
	switch cfg.Estimate.Pipeline {
	case config.PipelineNone:
		logger.Info("Price estimator disabled")
		return nil, nil
	case config.PipelineLinear:
		p, err := linear.Load(cfg.Estimate.Linear.ModelPath)
		if err != nil {
			logger.Fatal("Failed to load linear pipeline", zap.Error(err))
		}
		pipeline = p
	case config.PipelineRemote:
		rc := remote.New(&remote.Config{
			BaseURL:          cfg.Estimate.Remote.BaseURL,
			Timeout:          time.Duration(cfg.Estimate.Remote.TimeoutMs) * time.Millisecond,
			FailureThreshold: cfg.Estimate.Remote.FailureThreshold,
			OpenTimeout:      time.Duration(cfg.Estimate.Remote.OpenTimeoutSec) * time.Second,
			Logger:           logger,
		})
		pipeline = rc
		checker = rc
	default:
		logger.Fatal("Unknown pipeline", zap.String("pipeline", cfg.Estimate.Pipeline))
	}

	svc, err := estimateuc.Load(ctx, pipeline, *cfg.Estimate.Band)
	if err != nil {
		logger.Fatal("Failed to create price estimator", zap.Error(err))
	}
	logger.Info("Price estimator ready",
		zap.String("pipeline", cfg.Estimate.Pipeline),
		zap.Float64("band", svc.Band()),
		zap.Int("columns", len(svc.Levels())),
	)
	return svc, checker
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", chi.RouteContext(r.Context()).RoutePattern()),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
