// Package web serves the receipt form, receipt pages, image downloads and a JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tfkr-ae/raseed"
	"github.com/tfkr-ae/raseed/listener"
	"github.com/tfkr-ae/raseed/render"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end of an App.
type Server struct {
	app    *raseed.App
	pages  *render.HTML
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer builds the routes for app.
func NewServer(app *raseed.App) (*Server, error) {
	pages, err := render.NewHTML()
	if err != nil {
		return nil, fmt.Errorf("loading pages: %w", err)
	}

	s := &Server{
		app:    app,
		pages:  pages,
		logger: app.Logger.With("component", "web"),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleForm)
	s.mux.HandleFunc("POST /{$}", s.handleFormPost)
	s.mux.HandleFunc("GET /receipt/{id}", s.handleReceipt)
	s.mux.HandleFunc("GET /receipt/{id}/download", s.handleDownload)
	s.mux.HandleFunc("GET /api/receipts", s.handleAPIList)
	s.mux.HandleFunc("POST /api/receipts", s.handleAPICreate)
	s.mux.HandleFunc("GET /api/receipts/{id}", s.handleAPIGet)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(app.Metrics.Registry, promhttp.HandlerOpts{}))

	return s, nil
}

// Handler returns the routes wrapped in the server's middleware.
func (s *Server) Handler() http.Handler {
	return s.recoverPanics(s.logRequests(compress(s.mux)))
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.app.Config.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.app.Config.Addr(), err)
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", l.Addr().String())
		errCh <- srv.Serve(listener.NewResilientListener(l, s.logger))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
