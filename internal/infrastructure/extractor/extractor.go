package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/akarpov/docrouter/internal/core/domain"
)

// Extractor pulls plain text out of uploaded blobs. The stored mime type
// is a hint only, magic bytes win when they disagree.
type Extractor struct {
	maxBytes int64
}

type Option func(*Extractor)

func WithMaxBytes(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{maxBytes: 64 << 20}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) Extract(ctx context.Context, r io.Reader, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("document exceeds %d bytes", e.maxBytes))
	}
	if len(data) == 0 {
		return "", nil
	}

	mt := normalizeMime(mimeType)

	switch {
	case isPDF(data):
		return extractPDF(data)
	case isZip(data) && (mt == mimeXLSX || strings.Contains(mt, "spreadsheet")):
		return extractXLSX(data)
	case looksLikeHTML(data) || mt == "text/html":
		return extractHTML(data)
	case mt == "application/pdf":
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("declared pdf is missing the %%PDF header"))
	case mt == mimeXLSX:
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("declared xlsx is not a zip container"))
	}

	if !utf8.Valid(data) {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("unsupported binary format %q", mimeType))
	}
	return collapseWhitespace(string(data)), nil
}

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func normalizeMime(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func looksLikeHTML(b []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(b[:min(len(b), 2048)])))
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		(strings.Contains(head, "<html") && strings.Contains(string(b), "</html>"))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
