// Package conduit provides a composable HTTP request/response orchestration
// core with OpenTelemetry instrumentation.
//
// Requests are built through an ordered chain of adapters (pure
// *http.Request transforms), and responses are resolved through an ordered
// chain of decisions. A decision inspects the current (body, status) pair
// and can transform it, restart the whole send cycle with a replacement
// decision list, fail, or finish with a typed value.
//
// # Features
//
//   - Adapter chains for request construction (method, body encoding,
//     query encoding, bearer auth) with fail-fast composition
//   - A decision state machine for response resolution with
//     identity-based list surgery (retry replaces itself, token refresh
//     removes itself)
//   - Retry with exponential backoff and jitter between send cycles
//   - Automatic token refresh on 403 via a nested orchestrated call
//   - Typed results through generic parse decisions and Send[T]
//   - OpenTelemetry tracing and metrics, zerolog debug logging
//
// # Quick Start
//
//	client := conduit.New(
//	    conduit.WithServiceName("payment-service"),
//	)
//
//	req := conduit.NewRequest("GetUser", "https://api.example.com/users/1")
//
//	user, err := conduit.Send[User](ctx, client, req)
//
// # Decisions
//
// A request may declare its own decision list. The list is driven in
// order against the response: a decision whose predicate does not match
// is discarded for the cycle, a matching one produces exactly one
// verdict. Every list must end in a decision that always applies and
// always terminates, such as the parse decision.
//
//	retry := conduit.NewRetryDecision(2)
//	req := conduit.NewRequest("CreateOrder", url).
//	    Method(conduit.MethodPost).
//	    Param("amount", 100).
//	    Decisions(
//	        retry,
//	        conduit.ValidateStatus2xx(),
//	        conduit.NormalizeEmptyBody(),
//	        conduit.ParseInto[Order](),
//	    )
//
// A RestartWith verdict hands control back to the client, which rebuilds
// the request from its adapters and retransmits. Because adapters re-run
// on every cycle, a token refreshed between cycles is picked up by the
// bearer adapter on the retry.
//
// # Token Refresh
//
//	source := conduit.NewTokenSource("initial-token")
//	refreshReq := conduit.NewRequest("RefreshToken", authURL).
//	    Method(conduit.MethodPost).
//	    Param("grant_type", "refresh_token")
//
//	req := conduit.NewRequest("GetAccount", accountURL).
//	    Bearer(source.Token).
//	    Decisions(
//	        conduit.NewRefreshTokenDecision(refreshReq, source),
//	        conduit.ParseInto[Account](),
//	    )
//
// On a 403 the refresh decision performs a full nested send against the
// refresh endpoint, installs the new token, removes itself from the
// active list, and restarts. A second 403 in the same logical call falls
// through to the next decision instead of refreshing again.
//
// # Observability
//
// The client emits a span per logical send with restart events, and the
// following metrics:
//
//   - conduit.send.duration (histogram)
//   - conduit.transport.calls (counter)
//   - conduit.restarts (counter)
//   - conduit.token.refreshes (counter)
//   - conduit.send.errors (counter)
package conduit
