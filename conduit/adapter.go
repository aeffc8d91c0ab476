package conduit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// Adapter is a pure transform applied in sequence to build a
// transport-ready request from a logical one. An adapter receives the
// request produced by its predecessor and returns the next one, or an
// error that aborts construction before anything is sent.
type Adapter func(req *http.Request) (*http.Request, error)

// ApplyAdapters folds the adapter chain left to right over base.
// Folding stops at the first failing adapter and the failure propagates
// to the caller.
func ApplyAdapters(base *http.Request, adapters []Adapter) (*http.Request, error) {
	req := base
	for _, adapt := range adapters {
		next, err := adapt(req)
		if err != nil {
			return nil, err
		}
		req = next
	}
	return req, nil
}

// buildHTTPRequest constructs the transport request skeleton and folds
// the request's adapter chain over it.
func buildHTTPRequest(ctx context.Context, r *Request) (*http.Request, error) {
	base, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, err
	}
	return ApplyAdapters(base, r.adapterChain())
}

// MethodAdapter sets the HTTP verb.
func MethodAdapter(m Method) Adapter {
	return func(req *http.Request) (*http.Request, error) {
		req.Method = string(m)
		return req, nil
	}
}

// ContentAdapter serializes the parameter list.
//
// For GET, parameters become the URL query string. For POST, the
// content type selects the body encoding: ContentTypeJSON marshals the
// parameters as a whole-body JSON object, ContentTypeForm encodes them
// as &-joined key=value pairs. Keys and values are percent-escaped in
// both the form and query encodings. The Content-Type header is set to
// the matching MIME literal. A request without parameters passes
// through unchanged.
func ContentAdapter(method Method, params []Param, ct ContentType) Adapter {
	return func(req *http.Request) (*http.Request, error) {
		if len(params) == 0 {
			return req, nil
		}

		if method == MethodGet {
			req.URL.RawQuery = encodePairs(params)
			return req, nil
		}

		switch ct {
		case ContentTypeJSON:
			obj := make(map[string]any, len(params))
			for _, p := range params {
				obj[p.Key] = p.Value
			}
			body, err := json.Marshal(obj)
			if err != nil {
				return nil, err
			}
			setBody(req, body, MIMEApplicationJSON)
		case ContentTypeForm:
			setBody(req, []byte(encodePairs(params)), MIMEApplicationForm)
		default:
			return nil, fmt.Errorf("conduit: unsupported content type %q", ct)
		}
		return req, nil
	}
}

// TokenProvider supplies a bearer token. Returning ok=false means no
// token is available, which the auth adapter treats as a no-op.
type TokenProvider func() (token string, ok bool)

// StaticToken returns a TokenProvider for a fixed token. An empty token
// reports absent.
func StaticToken(token string) TokenProvider {
	return func() (string, bool) {
		return token, token != ""
	}
}

// BearerAuthAdapter sets "Authorization: Bearer <token>" when the
// provider yields a token. An absent token leaves the request untouched.
func BearerAuthAdapter(provider TokenProvider) Adapter {
	return func(req *http.Request) (*http.Request, error) {
		if provider == nil {
			return req, nil
		}
		token, ok := provider()
		if !ok {
			return req, nil
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}
}

// encodePairs encodes parameters as key=value pairs joined by &,
// preserving declared order. Values are stringified with their default
// textual representation and percent-escaped.
func encodePairs(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fmt.Sprint(p.Value)))
	}
	return b.String()
}

// setBody installs a replayable body. GetBody lets each send cycle
// retransmit without re-running serialization inside the transport.
func setBody(req *http.Request, body []byte, contentType string) {
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)
}
