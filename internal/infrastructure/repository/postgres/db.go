package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/akarpov/docrouter/internal/core/domain"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker/scraper startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	original_name VARCHAR(255) NOT NULL,
	storage_path TEXT NOT NULL,
	doc_type VARCHAR(50),
	confidence DOUBLE PRECISION,
	file_size BIGINT,
	mime_type VARCHAR(100),
	content_hash VARCHAR(64),
	status VARCHAR(20) DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS metadata (
	id SERIAL PRIMARY KEY,
	doc_id UUID REFERENCES documents(id) ON DELETE CASCADE,
	key_entities JSONB,
	related_docs UUID[],
	risk_score DOUBLE PRECISION,
	summary TEXT,
	language VARCHAR(10),
	sentiment_score DOUBLE PRECISION,
	topics JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	username VARCHAR(100) UNIQUE NOT NULL,
	email VARCHAR(255) UNIQUE NOT NULL,
	full_name VARCHAR(255),
	role VARCHAR(50) DEFAULT 'user',
	department VARCHAR(100),
	skills JSONB,
	workload_capacity INTEGER DEFAULT 10,
	timezone VARCHAR(50),
	is_active BOOLEAN DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS routing_rules (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	condition JSONB NOT NULL,
	assignee VARCHAR(100),
	team VARCHAR(100),
	priority INTEGER DEFAULT 1,
	is_active BOOLEAN DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS document_assignments (
	id SERIAL PRIMARY KEY,
	doc_id UUID REFERENCES documents(id) ON DELETE CASCADE,
	user_id UUID REFERENCES users(id),
	assigned_by VARCHAR(100),
	status VARCHAR(50) DEFAULT 'assigned',
	priority INTEGER DEFAULT 1,
	due_date TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id SERIAL PRIMARY KEY,
	entity_type VARCHAR(50) NOT NULL,
	entity_id VARCHAR(255) NOT NULL,
	action VARCHAR(50) NOT NULL,
	user_id UUID REFERENCES users(id),
	details JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scraping_sources (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	url TEXT NOT NULL,
	source_type VARCHAR(50),
	scraping_rules JSONB,
	last_scraped TIMESTAMPTZ,
	is_active BOOLEAN DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scraped_content (
	id SERIAL PRIMARY KEY,
	source_id INTEGER REFERENCES scraping_sources(id),
	url TEXT NOT NULL,
	title VARCHAR(500),
	content TEXT,
	content_hash VARCHAR(64),
	metadata JSONB,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents(doc_type);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_metadata_doc_id ON metadata(doc_id);
CREATE INDEX IF NOT EXISTS idx_assignments_user_id ON document_assignments(user_id);
CREATE INDEX IF NOT EXISTS idx_assignments_status ON document_assignments(status);
CREATE INDEX IF NOT EXISTS idx_audit_entity_type ON audit_logs(entity_type);
CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_logs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_scraped_content_hash ON scraped_content(content_hash);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// mapConstraintError surfaces unique violations as domain errors.
func mapConstraintError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.WrapError(domain.ErrAlreadyExists, operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
