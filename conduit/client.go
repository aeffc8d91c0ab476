package conduit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client orchestrates the two-sided pipeline: it builds the transport
// request through the adapter chain, performs exactly one transport call
// per cycle, and hands the (body, status) pair to the decision chain
// driver. A RestartWith verdict re-enters the cycle from the top with
// the replacement decision list, so adapters re-run and a refreshed
// token takes effect on the retry.
//
// Create a Client using New():
//
//	client := conduit.New(
//	    conduit.WithServiceName("payment-service"),
//	)
//
//	order, err := conduit.Send[Order](ctx, client,
//	    conduit.NewRequest("GetOrder", "https://api.example.com/orders/1"))
type Client struct {
	transport   http.RoundTripper
	logger      zerolog.Logger
	debug       bool
	maxRestarts int
	serviceName string
	tracer      trace.Tracer
	metrics     *metrics
}

// Do sends the request and resolves the response through the request's
// declared decision list. The result is the value produced by the
// terminal Done verdict; use Send for a typed result.
//
// The declared list must be non-empty; driving an empty list is a
// programming contract violation and panics.
func (c *Client) Do(ctx context.Context, req *Request) (any, error) {
	return c.send(ctx, req, nil)
}

// DoWith sends the request, resolving the response through the given
// decision list instead of the request's declared one. This is also the
// path a RestartWith verdict takes internally.
func (c *Client) DoWith(ctx context.Context, req *Request, decisions []Decision) (any, error) {
	return c.send(ctx, req, decisions)
}

// Send sends the request and returns the terminal value as T.
//
// When the request declares no decision list, the default list is used:
// empty bodies are normalized to "{}" and the body is decoded into T.
//
//	user, err := conduit.Send[User](ctx, client, req)
func Send[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var zero T
	decisions := req.declaredDecisions()
	if decisions == nil {
		decisions = DefaultDecisions[T]()
	}
	value, err := c.send(ctx, req, decisions)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("conduit: decision chain produced %T, want %T", value, zero)
	}
	return typed, nil
}

// send runs the full orchestration under a single span: build, one
// transport call, drive, and trampoline on restart verdicts.
func (c *Client) send(ctx context.Context, req *Request, override []Decision) (any, error) {
	decisions := override
	if decisions == nil {
		decisions = req.declaredDecisions()
	}
	if len(decisions) == 0 {
		panic("conduit: send requires a non-empty decision list")
	}

	ctx, span := c.tracer.Start(ctx, "conduit.send "+req.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("conduit.operation", req.name),
			attribute.String("http.request.method", string(req.method)),
			attribute.String("url.full", req.url),
		),
	)
	defer span.End()

	start := time.Now()
	value, err := c.sendCycles(ctx, span, req, decisions)
	c.metrics.recordSendDuration(ctx, time.Since(start), c.baseAttributes(req))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.recordSendError(ctx, errorType(err), c.baseAttributes(req))
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return value, nil
}

// sendCycles is the restart trampoline. Each iteration is one full
// cycle: adapter build, transport call, decision drive. Restart depth is
// capped so a list that restarts unconditionally fails instead of
// looping forever.
func (c *Client) sendCycles(
	ctx context.Context,
	span trace.Span,
	req *Request,
	decisions []Decision,
) (any, error) {
	for cycle := 0; ; cycle++ {
		if cycle > c.maxRestarts {
			return nil, ErrRestartLimit
		}

		httpReq, err := buildHTTPRequest(ctx, req)
		if err != nil {
			// Build failure: nothing was sent.
			return nil, err
		}

		if c.debug {
			logRequest(c.logger, httpReq, cycle)
		}

		callStart := time.Now()
		data, status, err := c.perform(ctx, httpReq)
		if err != nil {
			return nil, err
		}
		if c.debug {
			logResponse(c.logger, status, len(data), time.Since(callStart))
		}

		out := c.drive(ctx, req, data, status, decisions)
		switch out.kind {
		case outcomeRestart:
			span.AddEvent("conduit.restart", trace.WithAttributes(
				attribute.Int("conduit.cycle", cycle+1),
				attribute.Int("http.response.status_code", status),
			))
			c.metrics.recordRestart(ctx, c.baseAttributes(req))
			decisions = out.decisions
		case outcomeFailed:
			return nil, out.err
		case outcomeDone:
			return out.value, nil
		}
	}
}

// perform issues the single transport call for a cycle and reads the
// body. A transport that completes without an HTTP response is a
// protocol mismatch; a response without a body carries no data to drive
// decisions against.
func (c *Client) perform(ctx context.Context, httpReq *http.Request) ([]byte, int, error) {
	c.metrics.recordTransportCall(ctx, nil)

	resp, err := c.transport.RoundTrip(httpReq)
	if err != nil {
		return nil, 0, err
	}
	if resp == nil {
		return nil, 0, ErrNonHTTPResponse
	}
	if resp.Body == nil {
		return nil, 0, ErrNilData
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return data, resp.StatusCode, nil
}

// baseAttributes returns the metric attributes shared by all
// instruments for a request.
func (c *Client) baseAttributes(req *Request) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	attrs = append(attrs,
		attribute.String("conduit.operation", req.name),
		attribute.String("http.request.method", string(req.method)),
	)
	if c.serviceName != "" {
		attrs = append(attrs, attribute.String("service.name", c.serviceName))
	}
	return attrs
}

// errorType classifies an error for the send error counter.
func errorType(err error) string {
	var apiErr *APIError
	var tokenErr *TokenError
	switch {
	case errors.Is(err, ErrNilData):
		return "nil_data"
	case errors.Is(err, ErrNonHTTPResponse):
		return "non_http_response"
	case errors.Is(err, ErrRestartLimit):
		return "restart_limit"
	case errors.As(err, &tokenErr):
		return "token_error"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
