package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/awantoch/visitorcount/config"
	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/core"
	"github.com/joho/godotenv"
)

var (
	serverlessMux http.Handler
	cleanupFunc   func()
	muxMutex      sync.Mutex
)

// ServerlessHandler is the function entry point. Storage is opened on the
// first non-preflight request and reused while the instance stays warm. A
// failed start is not cached; the next request tries again.
func ServerlessHandler(w http.ResponseWriter, r *http.Request) {
	// Preflight on the counter routes never needs storage
	if r.Method == http.MethodOptions && visitorRoutes[normalizePath(r.URL.Path)] {
		setCORSHeaders(w)
		w.WriteHeader(http.StatusOK)
		return
	}

	mux, err := serverlessHandler(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	mux.ServeHTTP(w, r)
}

func serverlessHandler(ctx context.Context) (http.Handler, error) {
	muxMutex.Lock()
	defer muxMutex.Unlock()
	if serverlessMux != nil {
		return serverlessMux, nil
	}

	_ = godotenv.Load()
	cfg, err := config.Resolve(constants.ConfigFileName)
	if err != nil {
		return nil, err
	}
	deps, cleanup, err := core.InitializeDependencies(context.WithoutCancel(ctx), cfg)
	if err != nil {
		return nil, err
	}
	serverlessMux = NewHandler(deps, Options{Health: true})
	cleanupFunc = cleanup
	return serverlessMux, nil
}

// ResetServerlessHandler releases the cached handler so the next request
// re-reads configuration (for testing).
func ResetServerlessHandler() {
	muxMutex.Lock()
	defer muxMutex.Unlock()

	if cleanupFunc != nil {
		cleanupFunc()
	}
	serverlessMux = nil
	cleanupFunc = nil
}
