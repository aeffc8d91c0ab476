package conduit

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// parseDecision is the terminal decision: it always applies and decodes
// the body into T.
type parseDecision[T any] struct {
	id uuid.UUID
}

// ParseInto returns the terminal parse decision for response type T.
// It always applies, finishing with Done on a successful decode and
// Fail with the decode error otherwise. Every decision list must end in
// a decision like this one.
func ParseInto[T any]() Decision {
	return &parseDecision[T]{id: uuid.New()}
}

// ID implements Decision.
func (d *parseDecision[T]) ID() uuid.UUID { return d.id }

// ShouldApply implements Decision. The parse decision always applies.
func (d *parseDecision[T]) ShouldApply(*Exchange) bool { return true }

// Apply implements Decision.
func (d *parseDecision[T]) Apply(_ context.Context, ex *Exchange) Verdict {
	var out T
	if err := json.Unmarshal(ex.Data, &out); err != nil {
		return Fail(err)
	}
	return Done(out)
}

// mapDataDecision transforms the body when a predicate matches.
type mapDataDecision struct {
	id        uuid.UUID
	when      func(data []byte, status int) bool
	transform func(data []byte) []byte
}

// MapData returns a decision that applies when the predicate matches
// the current (body, status) pair, replaces the body via the pure
// transform, and continues driving the remaining list.
func MapData(when func(data []byte, status int) bool, transform func(data []byte) []byte) Decision {
	return &mapDataDecision{id: uuid.New(), when: when, transform: transform}
}

// ID implements Decision.
func (d *mapDataDecision) ID() uuid.UUID { return d.id }

// ShouldApply implements Decision.
func (d *mapDataDecision) ShouldApply(ex *Exchange) bool {
	return d.when(ex.Data, ex.Status)
}

// Apply implements Decision.
func (d *mapDataDecision) Apply(_ context.Context, ex *Exchange) Verdict {
	return ContinueWith(d.transform(ex.Data), ex.Status)
}

// emptyJSONObject is the canonical body substituted for empty responses.
var emptyJSONObject = []byte("{}")

// NormalizeEmptyBody returns a decision that maps an empty response
// body to the canonical empty JSON object so the parse decision can
// decode it.
func NormalizeEmptyBody() Decision {
	return MapData(
		func(data []byte, _ int) bool { return len(data) == 0 },
		func([]byte) []byte { return emptyJSONObject },
	)
}

// DefaultDecisions returns the decision list used when a request does
// not declare one: empty-body normalization followed by the terminal
// parse decision for T.
func DefaultDecisions[T any]() []Decision {
	return []Decision{NormalizeEmptyBody(), ParseInto[T]()}
}
