// Package server is the HTTP host adapter: it exposes the pipelines as a
// small GeoJSON API with health and Prometheus endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/openbus-tools/stride/config"
	"github.com/openbus-tools/stride/metrics"
	"github.com/openbus-tools/stride/strideapi"
)

// Server wires the pipelines behind a chi router.
type Server struct {
	cfg        config.AppConfig
	transport  strideapi.Transport
	metrics    *metrics.Collector
	httpServer *http.Server
}

// New creates a server around the given transport.
func New(cfg config.AppConfig, transport strideapi.Transport, collector *metrics.Collector) *Server {
	return &Server{cfg: cfg, transport: transport, metrics: collector}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/locations", s.handleLocations)
	r.Post("/api/enrich", s.handleEnrich)
	if !s.cfg.Server.DisableMetrics {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return r
}

// Start begins serving in the background.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// WaitForShutdown blocks until SIGINT/SIGTERM and then shuts down gracefully.
func (s *Server) WaitForShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	} else {
		log.Printf("server shut down successfully")
	}
}
