// Command ithaca hosts the data layer as a standalone process: it opens the
// configured storage backend, periodically archives snapshots to the
// configured blob backend, and exposes process metrics over HTTP. Backends
// are selected via environment variables (see internal/core).
package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HectorMRC/ithaca/internal/core"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address for the metrics endpoints")
	archiveEvery := flag.Duration("archive-every", 15*time.Minute, "interval between snapshot archives (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*addr, *archiveEvery, logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(addr string, archiveEvery time.Duration, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := core.OpenPersistentStore(logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	registry := prometheus.NewRegistry()
	recorder, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	if archiveEvery > 0 {
		blobs, err := core.OpenBlobStore(ctx)
		if err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		archiver := core.NewSnapshotArchiver(store, blobs)
		go func() {
			ticker := time.NewTicker(archiveEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					start := time.Now()
					info, err := archiver.Archive(ctx)
					recorder.Observe(ctx, "archive_snapshot", err == nil, time.Since(start))
					if err != nil {
						logger.Error("snapshot archive failed", "error", err)
						continue
					}
					logger.Info("snapshot archived", "key", info.Key, "size", info.Size)
				}
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
