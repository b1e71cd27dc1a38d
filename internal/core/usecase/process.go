package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	docs       ports.DocumentRepository
	metadata   ports.MetadataRepository
	storage    ports.ObjectStorage
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	analyzer   ports.ContentAnalyzer
	queue      ports.MessageQueue
	audit      ports.AuditRepository
}

func NewProcessDocumentUseCase(
	docs ports.DocumentRepository,
	metadata ports.MetadataRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	analyzer ports.ContentAnalyzer,
	queue ports.MessageQueue,
	audit ports.AuditRepository,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		docs:       docs,
		metadata:   metadata,
		storage:    storage,
		extractor:  extractor,
		classifier: classifier,
		analyzer:   analyzer,
		queue:      queue,
		audit:      audit,
	}
}

// ProcessByID runs a document through extraction, classification and
// content analysis, persists the results and publishes them for routing.
// On failure the document is marked failed and the error is recorded in
// the audit trail.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, docID string) error {
	doc, err := uc.docs.GetByID(ctx, docID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	if err := uc.docs.UpdateStatus(ctx, docID, domain.StatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	result, err := uc.process(ctx, doc)
	if err != nil {
		uc.markFailed(ctx, docID, err)
		return err
	}

	if err := uc.queue.PublishClassificationResult(ctx, *result); err != nil {
		uc.markFailed(ctx, docID, err)
		return fmt.Errorf("publish classification result: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) process(ctx context.Context, doc *domain.Document) (*domain.ClassificationResult, error) {
	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer reader.Close()

	text, err := uc.extractor.Extract(ctx, reader, doc.MimeType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	classification, err := uc.classifier.Classify(ctx, text, doc.OriginalName)
	if err != nil {
		return nil, fmt.Errorf("classify document: %w", err)
	}

	analysis, err := uc.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("analyze content: %w", err)
	}

	meta := &domain.Metadata{
		DocID:          doc.ID,
		KeyEntities:    analysis.Entities,
		RiskScore:      analysis.RiskScore,
		Summary:        analysis.Summary,
		Language:       analysis.Language,
		SentimentScore: analysis.Sentiment,
		Topics:         analysis.Topics,
	}
	if err := uc.metadata.Upsert(ctx, meta); err != nil {
		return nil, fmt.Errorf("store metadata: %w", err)
	}

	if err := uc.docs.SaveClassification(ctx, doc.ID, classification); err != nil {
		return nil, fmt.Errorf("store classification: %w", err)
	}

	appendAudit(ctx, uc.audit, domain.EntityDocument, doc.ID, "classified", map[string]any{
		"doc_type":   classification.DocType,
		"confidence": classification.Confidence,
		"priority":   classification.Priority,
		"language":   analysis.Language,
		"risk_score": analysis.RiskScore,
	})

	return &domain.ClassificationResult{
		DocumentID: doc.ID,
		DocType:    classification.DocType,
		Confidence: classification.Confidence,
		Priority:   classification.Priority,
		Category:   analysis.TopTopic(),
		RiskScore:  analysis.RiskScore,
		Entities:   analysis.Entities,
	}, nil
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, docID string, cause error) {
	if err := uc.docs.UpdateStatus(ctx, docID, domain.StatusFailed); err != nil {
		slog.Error("mark document failed", "doc_id", docID, "error", err)
	}
	appendAudit(ctx, uc.audit, domain.EntityDocument, docID, "processing_failed", map[string]any{
		"error": cause.Error(),
	})
}
