package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/infrastructure/resilience"
)

// Subjects names the four subjects the pipeline runs on.
type Subjects struct {
	Ingest        string
	Classified    string
	Scrape        string
	Notifications string
}

type Queue struct {
	conn     *nats.Conn
	subjects Subjects
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	Executor             *resilience.Executor
}

func New(url string, subjects Subjects) (*Queue, error) {
	return NewWithOptions(url, subjects, Options{})
}

func NewWithOptions(url string, subjects Subjects, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("docrouter"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subjects: subjects,
		executor: options.Executor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishDocumentIngested(ctx context.Context, documentID string) error {
	return q.publish(ctx, q.subjects.Ingest, []byte(documentID))
}

func (q *Queue) PublishClassificationResult(ctx context.Context, result domain.ClassificationResult) error {
	return q.publishJSON(ctx, q.subjects.Classified, result)
}

func (q *Queue) PublishScrapeJob(ctx context.Context, job domain.ScrapeJob) error {
	return q.publishJSON(ctx, q.subjects.Scrape, job)
}

func (q *Queue) PublishAssignmentNotification(ctx context.Context, note domain.AssignmentNotification) error {
	return q.publishJSON(ctx, q.subjects.Notifications, note)
}

func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error {
	return q.subscribe(ctx, q.subjects.Ingest, "workers", func(ctx context.Context, data []byte) error {
		return handler(ctx, string(data))
	})
}

func (q *Queue) SubscribeClassificationResults(ctx context.Context, handler func(context.Context, domain.ClassificationResult) error) error {
	return q.subscribe(ctx, q.subjects.Classified, "routers", func(ctx context.Context, data []byte) error {
		var result domain.ClassificationResult
		if err := json.Unmarshal(data, &result); err != nil {
			return fmt.Errorf("decode classification result: %w", err)
		}
		return handler(ctx, result)
	})
}

func (q *Queue) SubscribeScrapeJobs(ctx context.Context, handler func(context.Context, domain.ScrapeJob) error) error {
	return q.subscribe(ctx, q.subjects.Scrape, "scrapers", func(ctx context.Context, data []byte) error {
		var job domain.ScrapeJob
		if err := json.Unmarshal(data, &job); err != nil {
			return fmt.Errorf("decode scrape job: %w", err)
		}
		return handler(ctx, job)
	})
}

func (q *Queue) publishJSON(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", subject, err)
	}
	return q.publish(ctx, subject, data)
}

func (q *Queue) publish(ctx context.Context, subject string, data []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish."+subject, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// subscribe blocks until ctx is done, then drains the subscription.
func (q *Queue) subscribe(ctx context.Context, subject, group string, handle func(context.Context, []byte) error) error {
	sub, err := q.conn.QueueSubscribe(subject, group, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		msgCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handle(msgCtx, msg.Data); err != nil {
			slog.Error("message handler failed", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
