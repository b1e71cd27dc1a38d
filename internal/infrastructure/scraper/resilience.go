package scraper

import (
	"context"
	"errors"
	"net"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/infrastructure/resilience"
)

// classifyFetchError decides retry and breaker treatment for a page fetch.
// Server-side and transport failures come out of getOnce tagged temporary;
// client errors such as 404 stay permanent and leave the breaker alone.
func classifyFetchError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	}

	return resilience.Verdict{Retryable: false, RecordFailure: false}
}
