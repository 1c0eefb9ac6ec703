// Package server serves catalog views for preview, with live reload over a
// websocket when templates or model files change.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/conneroisu/strata/internal/config"
	strataerrors "github.com/conneroisu/strata/internal/errors"
	"github.com/conneroisu/strata/internal/logging"
	"github.com/conneroisu/strata/internal/models"
	"github.com/conneroisu/strata/internal/renderer"
	"github.com/conneroisu/strata/internal/watcher"
	"github.com/conneroisu/strata/internal/websocket"
)

const (
	debounceDelay   = 300 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// PreviewServer serves views with live reload.
type PreviewServer struct {
	config   *config.Config
	renderer *renderer.ViewRenderer
	logger   logging.Logger
	hub      *websocket.Hub
	errors   *strataerrors.Collector
	models   *models.Cache

	serverMutex sync.Mutex
	httpServer  *http.Server
	watcher     *watcher.FileWatcher
}

// New creates a preview server. A nil logger discards log output.
func New(cfg *config.Config, r *renderer.ViewRenderer, logger logging.Logger) (*PreviewServer, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.WithComponent("server")

	cache, err := models.NewCache(cfg.Templates.ModelsDir, models.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	s := &PreviewServer{
		config:   cfg,
		renderer: r,
		logger:   logger,
		errors:   strataerrors.NewCollector(),
		models:   cache,
	}
	if cfg.Server.LiveReload {
		s.hub = websocket.NewHub(logger)
	}
	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /view/{name...}", s.handleView)
	mux.HandleFunc("GET /api/views", s.handleViews)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.hub != nil {
		mux.Handle("GET /ws", s.hub)
	}
	return s.addMiddleware(mux)
}

// Start serves until ctx is done, then shuts down gracefully. With live
// reload enabled the templates and models directories are watched.
func (s *PreviewServer) Start(ctx context.Context) error {
	if s.hub != nil {
		if err := s.setupFileWatcher(ctx); err != nil {
			return err
		}
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Server.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Preview server listening", "address", "http://"+server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the watcher, disconnects live-reload clients and shuts the
// HTTP server down.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	s.serverMutex.Lock()
	server, fw := s.httpServer, s.watcher
	s.serverMutex.Unlock()

	var errs []error
	if fw != nil {
		errs = append(errs, fw.Stop())
	}
	if s.hub != nil {
		errs = append(errs, s.hub.Shutdown(ctx))
	}
	if server != nil {
		errs = append(errs, server.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (s *PreviewServer) setupFileWatcher(ctx context.Context) error {
	fw, err := watcher.New(debounceDelay, s.logger)
	if err != nil {
		return err
	}

	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.PatternFilter(s.config.Templates.Pattern, "*.yaml", "*.yml", "*.json"))
	fw.AddHandler(s.OnChange)

	if err := fw.AddRecursive(s.config.Templates.Dir); err != nil {
		_ = fw.Stop()
		return fmt.Errorf("watching templates: %w", err)
	}
	if dir := s.config.Templates.ModelsDir; dir != "" {
		if _, statErr := os.Stat(dir); statErr == nil {
			if err := fw.AddRecursive(dir); err != nil {
				s.logger.Warn(ctx, err, "Failed to watch models", "path", dir)
			}
		}
	}

	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return err
	}

	s.serverMutex.Lock()
	s.watcher = fw
	s.serverMutex.Unlock()
	return nil
}

// OnChange reloads the catalog after files changed and tells connected pages
// to refresh. A catalog that fails to load keeps serving its previous views
// and the pages show the error instead.
func (s *PreviewServer) OnChange(events []watcher.ChangeEvent) error {
	ctx := context.Background()
	target := ""
	if len(events) > 0 {
		target = events[0].Path
	}

	s.errors.Clear()
	s.models.Purge()
	if err := s.renderer.Catalog().Reload(); err != nil {
		s.errors.Add(err)
		s.logger.Warn(ctx, err, "Reload failed", "changes", len(events))
		s.broadcast(websocket.UpdateMessage{Type: websocket.MessageError, Target: target, Content: err.Error()})
		return nil
	}

	s.logger.Info(ctx, "Views reloaded", "changes", len(events), "views", len(s.renderer.Catalog().Names()))
	s.broadcast(websocket.UpdateMessage{Type: websocket.MessageReload, Target: target})
	return nil
}

func (s *PreviewServer) broadcast(msg websocket.UpdateMessage) {
	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
}
