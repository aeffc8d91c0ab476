package conduit

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// StatusValidationDecision rejects responses whose status falls outside
// an accepted half-open range [min, max). When it applies, it decodes
// the error payload and terminates the chain with an APIError wrapping
// the payload and status code.
//
// Place it after a RetryDecision so exhausted retries fall through to
// it, and before the terminal parse decision.
type StatusValidationDecision struct {
	id      uuid.UUID
	min     int
	max     int
	payload func() any
}

// NewStatusValidationDecision creates a validation decision for the
// accepted range [min, max). The payload factory produces the value the
// error body decodes into; a nil factory decodes into a generic map.
func NewStatusValidationDecision(min, max int, payload func() any) *StatusValidationDecision {
	if payload == nil {
		payload = func() any { return &map[string]any{} }
	}
	return &StatusValidationDecision{
		id:      uuid.New(),
		min:     min,
		max:     max,
		payload: payload,
	}
}

// ValidateStatus2xx creates a validation decision accepting [200, 300)
// with the generic error payload.
func ValidateStatus2xx() *StatusValidationDecision {
	return NewStatusValidationDecision(200, 300, nil)
}

// ID implements Decision.
func (d *StatusValidationDecision) ID() uuid.UUID { return d.id }

// ShouldApply implements Decision: the decision applies to any status
// outside the accepted range.
func (d *StatusValidationDecision) ShouldApply(ex *Exchange) bool {
	return ex.Status < d.min || ex.Status >= d.max
}

// Apply implements Decision. A body that does not decode is carried in
// the APIError as a raw string so the status is never lost to a decode
// failure.
func (d *StatusValidationDecision) Apply(_ context.Context, ex *Exchange) Verdict {
	target := d.payload()
	if err := json.Unmarshal(ex.Data, target); err != nil {
		return Fail(&APIError{StatusCode: ex.Status, Payload: string(ex.Data)})
	}
	return Fail(&APIError{StatusCode: ex.Status, Payload: target})
}
