package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/awantoch/visitorcount/config"
	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/core"
	"github.com/awantoch/visitorcount/telemetry"
	"github.com/awantoch/visitorcount/utils"
)

const shutdownTimeout = 10 * time.Second

// Options selects the optional routes NewHandler mounts.
type Options struct {
	Health  bool
	Metrics bool
}

var visitorRoutes = map[string]bool{
	strings.ToLower(constants.RouteVisitorCount):    true,
	strings.ToLower(constants.RouteAPIVisitorCount): true,
}

// NewHandler builds the routing handler. Route matching ignores case and a
// trailing slash.
func NewHandler(deps *core.Dependencies, opts Options) http.Handler {
	visits := telemetry.WrapHandler("visitor_count", VisitorCountHandler(deps.Counter))
	metrics := telemetry.MetricsHandler()

	router := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := normalizePath(r.URL.Path)
		switch {
		case visitorRoutes[path]:
			visits.ServeHTTP(w, r)
		case opts.Health && path == constants.RouteHealth:
			healthHandler(w, r)
		case opts.Metrics && path == constants.RouteMetrics:
			metrics.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
	return RequestIDMiddleware(router)
}

func normalizePath(path string) string {
	path = strings.ToLower(path)
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := utils.WriteHTTPJSON(w, http.StatusOK, map[string]string{"status": constants.ResponseHealthy}); err != nil {
		utils.WarnCtx(r.Context(), "Failed to write health check response", "error", err)
	}
}

// StartServer serves the visitor counter until ctx is cancelled, then shuts
// down gracefully.
func StartServer(ctx context.Context, cfg *config.Config) error {
	deps, cleanup, err := core.InitializeDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           NewHandler(deps, Options{Health: true, Metrics: true}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	utils.Info("Visitor counter listening on %s", srv.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		utils.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
