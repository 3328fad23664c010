package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/newsportal/pkg/config"
	"github.com/umputun/newsportal/pkg/domain"
	"github.com/umputun/newsportal/pkg/feed"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/documents.go -pkg mocks -skip-ensure -fmt goimports . DocumentProvider

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	documents DocumentProvider
	generator *feed.Generator
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// DocumentProvider returns the current aggregated document
type DocumentProvider interface {
	Document(ctx context.Context) (*domain.Document, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetCacheConfig() config.CacheConfig
	GetDocumentConfig() config.DocumentConfig
	GetSections() map[string][]domain.Source
	GetFullConfig() *config.Config
}

// New initializes a new server instance
func New(cfg ConfigProvider, documents DocumentProvider, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		documents: documents,
		generator: feed.NewGenerator(cfg.GetFullConfig().Server.BaseURL, cfg.GetDocumentConfig().Title),
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newsportal", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /rss", s.documentHandler)
		r.HandleFunc("GET /rss/{section}", s.sectionHandler)
		r.HandleFunc("GET /v1/status", s.statusHandler)
	})

	s.router.HandleFunc("GET /rss/{section}", s.rssHandler)
	s.router.HandleFunc("GET /opml", s.opmlHandler)
}
