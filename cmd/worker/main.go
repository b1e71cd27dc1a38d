package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akarpov/docrouter/internal/bootstrap"
	"github.com/akarpov/docrouter/internal/config"
	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/observability/metrics"
)

const processTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "worker", cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := serveMetrics(cfg.WorkerMetricsPort, workerMetrics.Handler())

	errCh := make(chan error, 2)

	go func() {
		log.Printf("worker consuming %s", cfg.IngestSubject)
		errCh <- app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
			defer cancel()

			workerMetrics.StartDocument()
			started := time.Now()
			err := app.ProcessUC.ProcessByID(processCtx, documentID)
			workerMetrics.FinishDocument("worker", time.Since(started), err)
			return err
		})
	}()

	go func() {
		log.Printf("worker consuming %s", cfg.ClassifiedSubject)
		errCh <- app.Queue.SubscribeClassificationResults(ctx, func(handlerCtx context.Context, result domain.ClassificationResult) error {
			routeCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
			defer cancel()

			_, err := app.RouteUC.Route(routeCtx, result)
			outcome := "routed"
			if err != nil {
				outcome = "failed"
			}
			workerMetrics.RecordRoutingDecision("worker", outcome)
			return err
		})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("worker subscribe error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics shutdown error: %v", err)
	}
}

func serveMetrics(port string, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	return server
}
