package conduit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroBackOffRetry(attempts int) *RetryDecision {
	return NewRetryDecisionWithBackOff(attempts, &FixedBackOff{})
}

func TestRetryDecision_ShouldApply(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		status   int
		want     bool
	}{
		{
			name:     "given zero attempts and 500, then never applies",
			attempts: 0,
			status:   500,
			want:     false,
		},
		{
			name:     "given negative attempts and 500, then never applies",
			attempts: -1,
			status:   500,
			want:     false,
		},
		{
			name:     "given attempts and 2xx, then does not apply",
			attempts: 2,
			status:   200,
			want:     false,
		},
		{
			name:     "given attempts and 299, then does not apply",
			attempts: 2,
			status:   299,
			want:     false,
		},
		{
			name:     "given attempts and 500, then applies",
			attempts: 2,
			status:   500,
			want:     true,
		},
		{
			name:     "given attempts and 199, then applies",
			attempts: 2,
			status:   199,
			want:     true,
		},
		{
			name:     "given attempts and 300, then applies",
			attempts: 2,
			status:   300,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := zeroBackOffRetry(tt.attempts)
			got := d.ShouldApply(&Exchange{Status: tt.status})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetryDecision_ApplyReplacesSelfByIdentity(t *testing.T) {
	retry := zeroBackOffRetry(2)
	before := newStubDecision(neverApplies, nil)
	after := newStubDecision(alwaysApplies, doneWith("after"))

	list := []Decision{before, retry, after}
	ex := &Exchange{Status: 500, Data: []byte("{}"), Decisions: list}

	v := retry.Apply(context.Background(), ex)
	require.Equal(t, verdictRestart, v.kind)
	require.Len(t, v.decisions, 3)

	// Position and identity preserved, count decremented.
	assert.Equal(t, before.ID(), v.decisions[0].ID())
	assert.Equal(t, after.ID(), v.decisions[2].ID())

	successor, ok := v.decisions[1].(*RetryDecision)
	require.True(t, ok)
	assert.Equal(t, retry.ID(), successor.ID(), "successor keeps the same identity")
	assert.Equal(t, 1, successor.Remaining())

	// Original list untouched.
	assert.Same(t, retry, list[1].(*RetryDecision))
	assert.Equal(t, 2, retry.Remaining())
}

func TestRetryDecision_CountReachesZeroThenFallsThrough(t *testing.T) {
	retry := zeroBackOffRetry(1)
	list := []Decision{retry, ValidateStatus2xx(), ParseInto[widget]()}

	v := retry.Apply(context.Background(), &Exchange{Status: 500, Data: []byte("{}"), Decisions: list})
	require.Equal(t, verdictRestart, v.kind)

	successor := v.decisions[0].(*RetryDecision)
	assert.Equal(t, 0, successor.Remaining())
	assert.False(t, successor.ShouldApply(&Exchange{Status: 500}),
		"exhausted retry must not apply; the next decision handles the failure")
}

func TestRetryDecision_CanceledContextFails(t *testing.T) {
	d := NewRetryDecisionWithBackOff(1, &FixedBackOff{Interval: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := d.Apply(ctx, &Exchange{Status: 500, Decisions: []Decision{d}})
	require.Equal(t, verdictError, v.kind)
	assert.ErrorIs(t, v.err, context.Canceled)
}

func TestClient_RetryThenSuccess(t *testing.T) {
	mt := NewMockTransport().
		Enqueue(500, `{"error":"boom"}`).
		Enqueue(200, `{"name":"gear","count":1}`)

	c := newTestClient(mt)
	req := NewRequest("GetWidget", "https://api.example.com/widgets/1").
		Decisions(zeroBackOffRetry(2), ValidateStatus2xx(), NormalizeEmptyBody(), ParseInto[widget]())

	got, err := Send[widget](context.Background(), c, req)
	require.NoError(t, err)
	assert.Equal(t, widget{Name: "gear", Count: 1}, got)

	// One failed call plus one successful retry, not three.
	assert.Equal(t, 2, mt.RequestCount())
}

func TestClient_RetriesExhaustedThenAPIError(t *testing.T) {
	mt := NewMockTransport().Respond(500, `{"error":"still down"}`)

	c := newTestClient(mt)
	req := NewRequest("GetWidget", "https://api.example.com/widgets/1").
		Decisions(zeroBackOffRetry(2), ValidateStatus2xx(), NormalizeEmptyBody(), ParseInto[widget]())

	_, err := Send[widget](context.Background(), c, req)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)

	// Initial attempt plus exactly two retries.
	assert.Equal(t, 3, mt.RequestCount())
}
