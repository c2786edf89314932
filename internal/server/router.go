// Package server exposes schedule and budget documents over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/ukaji3/sitegrid-go/internal/config"
	"github.com/ukaji3/sitegrid-go/internal/logger"
)

// NewRouter registers every API route on a new ServeMux.
func NewRouter(docs Documents, cfg config.Config) *http.ServeMux {
	mux := http.NewServeMux()

	h := NewDocumentHandler(docs, cfg)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/projects/{projectID}/schedule", WithLogging(h.UploadSchedule))
	mux.HandleFunc("GET /api/projects/{projectID}/schedule", WithLogging(h.GetSchedule))

	mux.HandleFunc("POST /api/projects/{projectID}/budget", WithLogging(h.UploadBudget))
	mux.HandleFunc("GET /api/projects/{projectID}/budget", WithLogging(h.GetBudget))
	mux.HandleFunc("GET /api/projects/{projectID}/budget/summary", WithLogging(h.GetBudgetSummary))

	return mux
}

// Run serves handler on cfg.Server.Addr until ctx is cancelled, then shuts
// down gracefully within cfg.Server.ShutdownTimeout.
func Run(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server closed")
	return nil
}
