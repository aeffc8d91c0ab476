package conduit

import (
	"context"

	"github.com/google/uuid"
)

// Decision is a predicate plus response-transition unit in the
// post-response pipeline. The driver walks an ordered list of decisions
// against the current (body, status) pair: a decision whose ShouldApply
// returns false is discarded for the cycle; one that applies produces
// exactly one Verdict.
//
// Decisions are identified by a stable ID assigned at construction.
// Identity matters for decisions that perform list surgery on
// themselves: the retry decision replaces itself with a successor that
// keeps the same ID, and the token-refresh decision removes itself so it
// cannot recurse within the same logical call.
type Decision interface {
	// ID returns the decision's stable identity token.
	ID() uuid.UUID

	// ShouldApply reports whether the decision wants to handle the
	// current response state.
	ShouldApply(ex *Exchange) bool

	// Apply handles the response state and returns exactly one Verdict.
	// Apply may block, for example while a token-refresh decision
	// performs a nested network call; cancellation flows through ctx.
	Apply(ctx context.Context, ex *Exchange) Verdict
}

// Exchange carries the state a decision observes: the originating
// request, the current response body and status, the active decision
// list for this cycle, and the client for nested sends.
//
// The Decisions slice is the list the current drive started from.
// Decisions must never mutate it in place; list surgery produces new
// slices via ReplaceDecision and RemoveDecision.
type Exchange struct {
	// Client is the orchestrator driving this exchange. Decisions that
	// need a nested call (token refresh) send through it.
	Client *Client

	// Request is the logical request that produced this response.
	Request *Request

	// Data is the current response body.
	Data []byte

	// Status is the current HTTP status code.
	Status int

	// Decisions is the active decision list for this send cycle.
	Decisions []Decision
}

// ReplaceDecision returns a new list with the decision identified by id
// replaced by repl, preserving order and all other entries. The input
// list is not modified. If no entry matches, the copy is returned
// unchanged.
func ReplaceDecision(list []Decision, id uuid.UUID, repl Decision) []Decision {
	out := make([]Decision, len(list))
	copy(out, list)
	for i, d := range out {
		if d.ID() == id {
			out[i] = repl
			break
		}
	}
	return out
}

// RemoveDecision returns a new list with the decision identified by id
// removed, preserving the order of all other entries. The input list is
// not modified.
func RemoveDecision(list []Decision, id uuid.UUID) []Decision {
	out := make([]Decision, 0, len(list))
	for _, d := range list {
		if d.ID() == id {
			continue
		}
		out = append(out, d)
	}
	return out
}

// cloneDecisions returns a shallow copy so callers cannot mutate a
// request's declared list through the returned slice.
func cloneDecisions(list []Decision) []Decision {
	if list == nil {
		return nil
	}
	out := make([]Decision, len(list))
	copy(out, list)
	return out
}
