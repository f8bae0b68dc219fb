package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/shaperunner/api"
	"github.com/BaSui01/shaperunner/api/handlers"
	"github.com/BaSui01/shaperunner/config"
	"github.com/BaSui01/shaperunner/internal/metrics"
	"github.com/BaSui01/shaperunner/internal/server"
	"github.com/BaSui01/shaperunner/llm"
	"github.com/BaSui01/shaperunner/runner"
	"github.com/BaSui01/shaperunner/shape"
)

// Server wires configuration into the run service: model caller, runner,
// shape registry, HTTP handlers, and the optional metrics listener.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	collector *metrics.Collector
	errCh     chan error
}

// NewServer creates a server from loaded configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		errCh:  make(chan error, 2),
	}
}

// Start builds the pipeline and begins serving.
func (s *Server) Start() error {
	promReg := prometheus.NewRegistry()
	s.collector = metrics.NewCollector("shaperunner", promReg)

	caller := llm.New(llm.Config{
		BaseURL: s.cfg.LLM.BaseURL,
		Model:   s.cfg.LLM.Model,
		Timeout: s.cfg.LLM.Timeout,
	}, s.logger)

	run := runner.New(caller,
		runner.WithObserver(runner.MultiObserver{
			runner.NewLogObserver(s.logger),
			s.collector,
		}),
	)

	registry := shape.NewRegistry()
	shape.RegisterDefaults(registry, run)
	s.logger.Info("Registered shapes", zap.Strings("task_ids", registry.IDs()))

	mux := http.NewServeMux()
	mux.Handle(api.RunPath, WithRunTimeout(s.cfg.LLM.RunTimeout,
		handlers.NewRunHandler(registry, s.logger)))
	mux.Handle(api.HealthPath, handlers.NewHealthHandler(s.logger))

	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		RequestLogger(s.logger),
		Metrics(s.collector),
		RateLimit(s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst),
	)

	serverCfg := server.DefaultConfig()
	serverCfg.Addr = fmt.Sprintf(":%d", s.cfg.Server.HTTPPort)
	serverCfg.ReadTimeout = s.cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = s.cfg.Server.WriteTimeout
	serverCfg.ShutdownTimeout = s.cfg.Server.ShutdownTimeout

	s.httpManager = server.NewManager(handler, serverCfg, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	go s.forward(s.httpManager)

	if s.cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

		metricsCfg := server.DefaultConfig()
		metricsCfg.Addr = fmt.Sprintf(":%d", s.cfg.Metrics.Port)
		metricsCfg.ShutdownTimeout = s.cfg.Server.ShutdownTimeout

		s.metricsManager = server.NewManager(metricsMux, metricsCfg, s.logger)
		if err := s.metricsManager.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		go s.forward(s.metricsManager)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Bool("metrics_enabled", s.cfg.Metrics.Enabled),
	)
	return nil
}

// Err surfaces fatal serve errors.
func (s *Server) Err() <-chan error {
	return s.errCh
}

func (s *Server) forward(m *server.Manager) {
	if err := <-m.Err(); err != nil {
		s.errCh <- err
	}
}

// Shutdown stops all listeners gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
