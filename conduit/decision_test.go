package conduit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDecision is a scriptable decision for driver and surgery tests.
type stubDecision struct {
	id      uuid.UUID
	applies func(*Exchange) bool
	verdict func(*Exchange) Verdict
	applied int
	asked   int
}

func newStubDecision(applies func(*Exchange) bool, verdict func(*Exchange) Verdict) *stubDecision {
	return &stubDecision{id: uuid.New(), applies: applies, verdict: verdict}
}

func (d *stubDecision) ID() uuid.UUID { return d.id }

func (d *stubDecision) ShouldApply(ex *Exchange) bool {
	d.asked++
	if d.applies == nil {
		return true
	}
	return d.applies(ex)
}

func (d *stubDecision) Apply(_ context.Context, ex *Exchange) Verdict {
	d.applied++
	return d.verdict(ex)
}

func alwaysApplies(*Exchange) bool { return true }
func neverApplies(*Exchange) bool  { return false }

func doneWith(value any) func(*Exchange) Verdict {
	return func(*Exchange) Verdict { return Done(value) }
}

func TestReplaceDecision(t *testing.T) {
	a := newStubDecision(alwaysApplies, doneWith("a"))
	b := newStubDecision(alwaysApplies, doneWith("b"))
	c := newStubDecision(alwaysApplies, doneWith("c"))
	repl := newStubDecision(alwaysApplies, doneWith("repl"))

	list := []Decision{a, b, c}
	out := ReplaceDecision(list, b.ID(), repl)

	require.Len(t, out, 3)
	assert.Equal(t, a.ID(), out[0].ID())
	assert.Equal(t, repl.ID(), out[1].ID())
	assert.Equal(t, c.ID(), out[2].ID())

	// Original list untouched.
	assert.Equal(t, b.ID(), list[1].ID())
}

func TestReplaceDecision_NoMatch(t *testing.T) {
	a := newStubDecision(alwaysApplies, doneWith("a"))
	b := newStubDecision(alwaysApplies, doneWith("b"))
	repl := newStubDecision(alwaysApplies, doneWith("repl"))

	list := []Decision{a, b}
	out := ReplaceDecision(list, uuid.New(), repl)

	require.Len(t, out, 2)
	assert.Equal(t, a.ID(), out[0].ID())
	assert.Equal(t, b.ID(), out[1].ID())
}

func TestRemoveDecision(t *testing.T) {
	a := newStubDecision(alwaysApplies, doneWith("a"))
	b := newStubDecision(alwaysApplies, doneWith("b"))
	c := newStubDecision(alwaysApplies, doneWith("c"))

	list := []Decision{a, b, c}
	out := RemoveDecision(list, b.ID())

	require.Len(t, out, 2)
	assert.Equal(t, a.ID(), out[0].ID())
	assert.Equal(t, c.ID(), out[1].ID())

	// Original list untouched.
	require.Len(t, list, 3)
	assert.Equal(t, b.ID(), list[1].ID())
}

func TestRemoveDecision_NoMatch(t *testing.T) {
	a := newStubDecision(alwaysApplies, doneWith("a"))

	out := RemoveDecision([]Decision{a}, uuid.New())

	require.Len(t, out, 1)
	assert.Equal(t, a.ID(), out[0].ID())
}

func TestRequest_DeclaredDecisionsAreCopied(t *testing.T) {
	a := newStubDecision(alwaysApplies, doneWith("a"))
	b := newStubDecision(alwaysApplies, doneWith("b"))

	r := NewRequest("Op", "https://api.example.com/x").Decisions(a, b)

	first := r.declaredDecisions()
	first[0] = b

	second := r.declaredDecisions()
	assert.Equal(t, a.ID(), second[0].ID(), "mutating a returned list must not affect the request")
}
