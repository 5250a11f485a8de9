package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadyCheck probes one dependency the executor cannot work without.
type ReadyCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// StartMetricsServer serves /metrics, /healthz and /readyz in a background
// goroutine and shuts down when ctx is cancelled. /healthz reports process
// liveness; /readyz runs the given dependency probes and returns 503 naming
// the first dependency that fails.
func StartMetricsServer(ctx context.Context, addr string, logger *slog.Logger, checks ...ReadyCheck) {
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(logger, checks),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()
}

func newMux(logger *slog.Logger, checks []ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		probeCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, check := range checks {
			if err := check.Probe(probeCtx); err != nil {
				logger.Warn("readiness probe failed",
					slog.String("dependency", check.Name),
					slog.String("error", err.Error()),
				)
				http.Error(w, check.Name+": not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
