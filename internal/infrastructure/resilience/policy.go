package resilience

import "time"

type Policy struct {
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	RetryMultiplier  float64

	BreakerEnabled     bool
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	BreakerProbeCalls  uint32
}

func DefaultPolicy() Policy {
	return Policy{
		RetryMaxAttempts: 3,
		RetryBaseDelay:   200 * time.Millisecond,
		RetryMaxDelay:    2 * time.Second,
		RetryMultiplier:  2.0,

		BreakerEnabled:     true,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 30 * time.Second,
		BreakerProbeCalls:  2,
	}
}

func (p Policy) normalize() Policy {
	out := p
	def := DefaultPolicy()

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryBaseDelay <= 0 {
		out.RetryBaseDelay = def.RetryBaseDelay
	}
	if out.RetryMaxDelay < out.RetryBaseDelay {
		out.RetryMaxDelay = def.RetryMaxDelay
	}
	if out.RetryMaxDelay < out.RetryBaseDelay {
		out.RetryMaxDelay = out.RetryBaseDelay
	}
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}
	if out.BreakerMaxFailures == 0 {
		out.BreakerMaxFailures = def.BreakerMaxFailures
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerProbeCalls == 0 {
		out.BreakerProbeCalls = def.BreakerProbeCalls
	}

	return out
}
