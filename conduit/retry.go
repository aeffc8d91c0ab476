package conduit

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

// Default backoff between retry cycles.
const (
	// DefaultRetryInitialInterval is the first wait before a retry.
	DefaultRetryInitialInterval = 250 * time.Millisecond

	// DefaultRetryMaxInterval caps the wait between retries.
	DefaultRetryMaxInterval = 5 * time.Second

	// DefaultRetryMultiplier controls exponential growth of the wait.
	DefaultRetryMultiplier = 2.0

	// DefaultRetryJitterFactor randomizes each wait to prevent
	// synchronized retry storms.
	DefaultRetryJitterFactor = 0.5
)

// RetryDecision restarts the send cycle on non-2xx responses, up to a
// fixed number of attempts.
//
// When it applies, it waits one backoff interval, then produces
// RestartWith using the current decision list with itself replaced by a
// successor holding one fewer attempt. The successor keeps the same
// identity and list position, so all other decisions are preserved in
// order and further surgery keeps working. Once the count reaches zero
// the decision stops applying and a non-2xx response falls through to
// whatever decision follows.
type RetryDecision struct {
	id        uuid.UUID
	remaining int
	strategy  backoff.BackOff
}

// NewRetryDecision creates a retry decision with the given attempt
// budget and the default exponential backoff with jitter.
func NewRetryDecision(attempts int) *RetryDecision {
	return NewRetryDecisionWithBackOff(attempts, &backoff.ExponentialBackOff{
		InitialInterval:     DefaultRetryInitialInterval,
		RandomizationFactor: DefaultRetryJitterFactor,
		Multiplier:          DefaultRetryMultiplier,
		MaxInterval:         DefaultRetryMaxInterval,
	})
}

// NewRetryDecisionWithBackOff creates a retry decision with a custom
// backoff strategy. The strategy is shared across successors so the
// wait keeps growing over one logical call's retries.
func NewRetryDecisionWithBackOff(attempts int, strategy backoff.BackOff) *RetryDecision {
	return &RetryDecision{
		id:        uuid.New(),
		remaining: attempts,
		strategy:  strategy,
	}
}

// ID implements Decision. A successor keeps its predecessor's ID.
func (d *RetryDecision) ID() uuid.UUID { return d.id }

// Remaining returns the attempts left.
func (d *RetryDecision) Remaining() int { return d.remaining }

// ShouldApply implements Decision: the decision applies to any status
// outside [200, 300) while attempts remain.
func (d *RetryDecision) ShouldApply(ex *Exchange) bool {
	if d.remaining <= 0 {
		return false
	}
	return ex.Status < 200 || ex.Status >= 300
}

// Apply implements Decision. It blocks for one backoff interval
// (context-aware) and restarts with the successor in place.
func (d *RetryDecision) Apply(ctx context.Context, ex *Exchange) Verdict {
	if wait := d.strategy.NextBackOff(); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Fail(ctx.Err())
		case <-timer.C:
		}
	}

	successor := &RetryDecision{
		id:        d.id,
		remaining: d.remaining - 1,
		strategy:  d.strategy,
	}
	return RestartWith(ReplaceDecision(ex.Decisions, d.id, successor))
}

// FixedBackOff waits a constant interval between retries. An Interval
// of zero retries immediately, which tests rely on.
type FixedBackOff struct {
	// Interval is the wait returned by every NextBackOff call.
	Interval time.Duration
}

// NextBackOff implements backoff.BackOff.
func (b *FixedBackOff) NextBackOff() time.Duration { return b.Interval }

// Reset implements backoff.BackOff. No state to reset.
func (b *FixedBackOff) Reset() {}
