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
	"github.com/akarpov/docrouter/internal/core/ports"
	"github.com/akarpov/docrouter/internal/infrastructure/scraper"
	"github.com/akarpov/docrouter/internal/observability/metrics"
)

const jobTimeout = 10 * time.Minute

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "scraper", cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	scraperMetrics := metrics.NewScraperMetrics("scraper")
	metricsServer := serveMetrics(cfg.ScraperMetricsPort, scraperMetrics.Handler())

	runner := &meteredRunner{inner: app.ScrapeUC, metrics: scraperMetrics}
	scheduler := scraper.NewScheduler(runner, cfg.ScraperCronSpec, cfg.ScraperMinInterval)

	errCh := make(chan error, 2)

	go func() {
		log.Printf("scraper schedule %q", cfg.ScraperCronSpec)
		errCh <- scheduler.Start(ctx)
	}()

	go func() {
		log.Printf("scraper consuming %s", cfg.ScrapeSubject)
		errCh <- app.Queue.SubscribeScrapeJobs(ctx, func(handlerCtx context.Context, job domain.ScrapeJob) error {
			jobCtx, cancel := context.WithTimeout(handlerCtx, jobTimeout)
			defer cancel()

			started := time.Now()
			err := runner.Run(jobCtx, job)
			scraperMetrics.FinishJob("scraper", time.Since(started), err)
			return err
		})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("scraper error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics shutdown error: %v", err)
	}
}

// meteredRunner counts enqueued jobs without touching the scrape logic.
type meteredRunner struct {
	inner   ports.ScrapeRunner
	metrics *metrics.ScraperMetrics
}

func (r *meteredRunner) Run(ctx context.Context, job domain.ScrapeJob) error {
	return r.inner.Run(ctx, job)
}

func (r *meteredRunner) EnqueueDue(ctx context.Context, minInterval time.Duration) (int, error) {
	queued, err := r.inner.EnqueueDue(ctx, minInterval)
	if err == nil {
		r.metrics.AddEnqueued(queued)
	}
	return queued, err
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
