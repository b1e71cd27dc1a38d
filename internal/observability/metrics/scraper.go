package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ScraperMetrics struct {
	registry *prometheus.Registry

	jobsTotal    *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	jobsEnqueued prometheus.Counter
}

func NewScraperMetrics(service string) *ScraperMetrics {
	registry := prometheus.NewRegistry()

	jobsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docrouter",
			Subsystem: "scraper",
			Name:      "jobs_total",
			Help:      "Total scrape jobs by status.",
		},
		[]string{"service", "status"},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docrouter",
			Subsystem: "scraper",
			Name:      "job_duration_seconds",
			Help:      "Scrape job duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	jobsEnqueued := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docrouter",
			Subsystem: "scraper",
			Name:      "jobs_enqueued_total",
			Help:      "Total scrape jobs enqueued by the scheduler.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(jobsTotal, jobDuration, jobsEnqueued)

	return &ScraperMetrics{
		registry:     registry,
		jobsTotal:    jobsTotal,
		jobDuration:  jobDuration,
		jobsEnqueued: jobsEnqueued,
	}
}

func (m *ScraperMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ScraperMetrics) FinishJob(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.jobsTotal.WithLabelValues(service, status).Inc()
	m.jobDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *ScraperMetrics) AddEnqueued(count int) {
	if count > 0 {
		m.jobsEnqueued.Add(float64(count))
	}
}
