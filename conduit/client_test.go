package conduit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendDecodesTypedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"gear","count":2}`))
	}))
	defer server.Close()

	c := New(WithServiceName("conduit-test"))

	got, err := Send[widget](context.Background(), c, NewRequest("GetWidget", server.URL))
	require.NoError(t, err)
	assert.Equal(t, widget{Name: "gear", Count: 2}, got)
}

func TestClient_PostJSONRoundTrip(t *testing.T) {
	mt := NewMockTransport().Enqueue(200, `{"name":"made","count":1}`)
	c := newTestClient(mt)

	req := NewRequest("CreateWidget", "https://api.example.com/widgets").
		Method(MethodPost).
		Param("foo", "bar")

	_, err := Send[widget](context.Background(), c, req)
	require.NoError(t, err)

	sent := mt.LastRequest()
	require.NotNil(t, sent)
	assert.Equal(t, http.MethodPost, sent.Method)
	assert.Equal(t, MIMEApplicationJSON, sent.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"foo":"bar"}`, string(mt.RequestBody(0)))
}

func TestClient_BuildFailureSkipsTransport(t *testing.T) {
	mt := NewMockTransport().Respond(200, `{}`)
	c := newTestClient(mt)

	boom := errors.New("adapter rejected request")
	req := NewRequest("Broken", "https://api.example.com/x").
		Adapt(func(*http.Request) (*http.Request, error) { return nil, boom })

	_, err := Send[widget](context.Background(), c, req)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, mt.RequestCount(), "a request that fails to build must never be sent")
}

func TestClient_NilResponseIsNonHTTP(t *testing.T) {
	mt := NewMockTransport().EnqueueNilResponse()
	c := newTestClient(mt)

	_, err := Send[widget](context.Background(), c, NewRequest("Op", "https://api.example.com/x"))
	assert.ErrorIs(t, err, ErrNonHTTPResponse)
}

func TestClient_MissingBodyIsNilData(t *testing.T) {
	mt := NewMockTransport().EnqueueBodilessResponse(200)
	c := newTestClient(mt)

	_, err := Send[widget](context.Background(), c, NewRequest("Op", "https://api.example.com/x"))
	assert.ErrorIs(t, err, ErrNilData)
}

func TestClient_TransportErrorSurfaces(t *testing.T) {
	cause := errors.New("connection refused")
	mt := NewMockTransport().EnqueueError(cause)
	c := newTestClient(mt)

	_, err := Send[widget](context.Background(), c, NewRequest("Op", "https://api.example.com/x"))
	assert.ErrorIs(t, err, cause)
}

func TestClient_RestartLimit(t *testing.T) {
	mt := NewMockTransport().Respond(500, `{}`)
	c := New(WithTransport(mt), WithMaxRestarts(3))

	// A decision that restarts unconditionally with the same list.
	relentless := newStubDecision(alwaysApplies, func(ex *Exchange) Verdict {
		return RestartWith(ex.Decisions)
	})

	_, err := c.DoWith(context.Background(), NewRequest("Op", "https://api.example.com/x"),
		[]Decision{relentless})
	assert.ErrorIs(t, err, ErrRestartLimit)

	// One initial cycle plus three restarts before the budget trips.
	assert.Equal(t, 4, mt.RequestCount())
}

func TestClient_EmptyDecisionListPanics(t *testing.T) {
	c := newTestClient(NewMockTransport().Respond(200, `{}`))

	assert.Panics(t, func() {
		_, _ = c.Do(context.Background(), NewRequest("Op", "https://api.example.com/x"))
	})
}

func TestClient_OverrideDecisionsWinOverDeclared(t *testing.T) {
	mt := NewMockTransport().Respond(200, `{"name":"x","count":0}`)
	c := newTestClient(mt)

	declared := newStubDecision(alwaysApplies, doneWith("declared"))
	override := newStubDecision(alwaysApplies, doneWith("override"))

	req := NewRequest("Op", "https://api.example.com/x").Decisions(declared)

	got, err := c.DoWith(context.Background(), req, []Decision{override})
	require.NoError(t, err)
	assert.Equal(t, "override", got)
	assert.Zero(t, declared.applied)
}

func TestClient_ContextCancellationAbortsChain(t *testing.T) {
	mt := NewMockTransport().Respond(500, `{}`)
	c := newTestClient(mt)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The retry decision observes the canceled context while waiting
	// out its backoff, so the chain fails instead of restarting.
	retry := NewRetryDecisionWithBackOff(1, &FixedBackOff{Interval: time.Minute})
	req := NewRequest("Op", "https://api.example.com/x").
		Decisions(retry, ValidateStatus2xx(), ParseInto[widget]())

	_, err := c.Do(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mt.RequestCount())
}

func TestSend_MismatchedTerminalTypeErrors(t *testing.T) {
	mt := NewMockTransport().Respond(200, `{}`)
	c := newTestClient(mt)

	wrongType := newStubDecision(alwaysApplies, doneWith(42))
	req := NewRequest("Op", "https://api.example.com/x").Decisions(wrongType)

	_, err := Send[widget](context.Background(), c, req)
	assert.Error(t, err)
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil data", err: ErrNilData, want: "nil_data"},
		{name: "non-http", err: ErrNonHTTPResponse, want: "non_http_response"},
		{name: "restart limit", err: ErrRestartLimit, want: "restart_limit"},
		{name: "api error", err: &APIError{StatusCode: 500}, want: "api_error"},
		{name: "token error", err: NewTokenError("x", nil), want: "token_error"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "other", err: errors.New("x"), want: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorType(tt.err))
		})
	}
}
