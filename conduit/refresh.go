package conduit

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// TokenSource is a concurrency-safe bearer token holder. Its Token
// method satisfies TokenProvider, so the same source feeds both the
// auth adapter and the refresh decision.
type TokenSource struct {
	mu    sync.RWMutex
	token string
}

// NewTokenSource creates a TokenSource holding the initial token.
// An empty initial token reports absent until Set is called.
func NewTokenSource(initial string) *TokenSource {
	return &TokenSource{token: initial}
}

// Token returns the current token. Satisfies TokenProvider.
func (s *TokenSource) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set installs a new token. The next send cycle's auth adapter picks
// it up because adapters re-run on every rebuild.
func (s *TokenSource) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token is the default shape of a refresh endpoint's response.
type Token struct {
	AccessToken string `json:"access_token"`
}

// RefreshFunc performs the nested refresh call and returns the new
// bearer token.
type RefreshFunc func(ctx context.Context, c *Client) (string, error)

// RefreshViaRequest returns a RefreshFunc that sends req as a fully
// independent orchestrated call and reads a Token payload from it.
func RefreshViaRequest(req *Request) RefreshFunc {
	return func(ctx context.Context, c *Client) (string, error) {
		tok, err := Send[Token](ctx, c, req)
		if err != nil {
			return "", err
		}
		if tok.AccessToken == "" {
			return "", errors.New("refresh response carried no access token")
		}
		return tok.AccessToken, nil
	}
}

// RefreshTokenDecision re-authenticates on 403.
//
// When it applies, it performs one nested full request/response cycle
// against the refresh endpoint. On success it installs the new token in
// the source, removes itself (by identity, no replacement) from the
// active list, and restarts — so a repeated 403 in the same logical
// call falls through to the next decision instead of refreshing again.
// On nested failure it terminates the chain with a TokenError.
type RefreshTokenDecision struct {
	id      uuid.UUID
	refresh RefreshFunc
	source  *TokenSource
}

// NewRefreshTokenDecision creates a refresh decision that sends
// refreshReq through the same client and expects a Token payload.
func NewRefreshTokenDecision(refreshReq *Request, source *TokenSource) *RefreshTokenDecision {
	return NewRefreshTokenDecisionFunc(RefreshViaRequest(refreshReq), source)
}

// NewRefreshTokenDecisionFunc creates a refresh decision with a custom
// refresh function, for endpoints whose payload is not a plain Token.
func NewRefreshTokenDecisionFunc(refresh RefreshFunc, source *TokenSource) *RefreshTokenDecision {
	return &RefreshTokenDecision{
		id:      uuid.New(),
		refresh: refresh,
		source:  source,
	}
}

// ID implements Decision.
func (d *RefreshTokenDecision) ID() uuid.UUID { return d.id }

// ShouldApply implements Decision: the decision applies to 403 only.
func (d *RefreshTokenDecision) ShouldApply(ex *Exchange) bool {
	return ex.Status == http.StatusForbidden
}

// Apply implements Decision. The nested send blocks under the caller's
// context, so canceling the original call cancels the refresh too.
func (d *RefreshTokenDecision) Apply(ctx context.Context, ex *Exchange) Verdict {
	token, err := d.refresh(ctx, ex.Client)
	if err != nil {
		return Fail(NewTokenError("token refresh failed", err))
	}
	if d.source != nil {
		d.source.Set(token)
	}
	ex.Client.metrics.recordTokenRefresh(ctx, ex.Client.baseAttributes(ex.Request))
	return RestartWith(RemoveDecision(ex.Decisions, d.id))
}
