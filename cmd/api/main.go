package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/akarpov/docrouter/internal/adapters/http"
	"github.com/akarpov/docrouter/internal/adapters/http/openapi"
	"github.com/akarpov/docrouter/internal/bootstrap"
	"github.com/akarpov/docrouter/internal/config"
	"github.com/akarpov/docrouter/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "api", cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	doc, err := openapi.Load(ctx)
	if err != nil {
		log.Fatalf("load openapi document: %v", err)
	}
	validator, err := openapi.ValidationMiddleware(doc)
	if err != nil {
		log.Fatalf("build request validator: %v", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(httpadapter.Deps{
		Ingest:      app.IngestUC,
		Documents:   app.DocumentsUC,
		Users:       app.UsersUC,
		Rules:       app.RulesUC,
		Assignments: app.AssignmentsUC,
		Sources:     app.SourcesUC,
		Analytics:   app.AnalyticsUC,
		Metrics:     httpMetrics,
		Validator:   validator,
	}).Handler()

	mux := http.NewServeMux()
	mux.Handle("/", router)
	mux.Handle("/metrics", httpMetrics.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
