package conduit

import (
	"net/http"
)

// Method is the HTTP verb of a Request.
type Method string

// Supported HTTP methods.
const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

// ContentType selects how a request's parameters are serialized.
type ContentType string

const (
	// ContentTypeJSON serializes parameters as a whole-body JSON object.
	ContentTypeJSON ContentType = "json"

	// ContentTypeForm serializes parameters as URL-encoded form pairs.
	ContentTypeForm ContentType = "form"
)

// Wire content-type literals set by the content adapter.
const (
	MIMEApplicationJSON = "application/json"
	MIMEApplicationForm = "application/x-www-form-urlencoded; charset=utf-8"
)

// Param is a single request parameter. Parameters keep their declared
// order through both form and query encoding.
type Param struct {
	Key   string
	Value any
}

// Request is an immutable description of a logical HTTP call: URL,
// method, ordered parameters, content type, the adapter chain that
// builds the transport request, and the decision list that resolves the
// response. The same Request always yields the same initial adapter and
// decision sequences; restarting a send never mutates it.
//
// Construct with NewRequest and the fluent setters:
//
//	req := conduit.NewRequest("CreateOrder", "https://api.example.com/orders").
//	    Method(conduit.MethodPost).
//	    Param("amount", 100).
//	    Param("currency", "USD").
//	    Decisions(conduit.NewRetryDecision(2), conduit.ParseInto[Order]())
type Request struct {
	name        string
	url         string
	method      Method
	contentType ContentType
	params      []Param
	bearer      TokenProvider
	adapters    []Adapter
	decisions   []Decision
}

// NewRequest creates a GET Request with JSON content type and no
// parameters. The name identifies the operation in spans and logs.
func NewRequest(name, rawURL string) *Request {
	return &Request{
		name:        name,
		url:         rawURL,
		method:      MethodGet,
		contentType: ContentTypeJSON,
	}
}

// Name returns the operation name used for spans and logs.
func (r *Request) Name() string { return r.name }

// URL returns the request URL.
func (r *Request) URL() string { return r.url }

// Method sets the HTTP verb.
func (r *Request) Method(m Method) *Request {
	r.method = m
	return r
}

// ContentType sets the parameter serialization for POST bodies.
func (r *Request) ContentType(ct ContentType) *Request {
	r.contentType = ct
	return r
}

// Param appends a single parameter, preserving declaration order.
func (r *Request) Param(key string, value any) *Request {
	r.params = append(r.params, Param{Key: key, Value: value})
	return r
}

// Params appends multiple parameters in the given order.
func (r *Request) Params(params ...Param) *Request {
	r.params = append(r.params, params...)
	return r
}

// Bearer configures the auth adapter with a dynamic token provider.
// A provider reporting no token is a no-op, never an error, so a
// refreshed token installed between send cycles takes effect on the
// rebuild.
func (r *Request) Bearer(provider TokenProvider) *Request {
	r.bearer = provider
	return r
}

// BearerToken configures the auth adapter with a static token.
func (r *Request) BearerToken(token string) *Request {
	return r.Bearer(StaticToken(token))
}

// Adapt appends custom adapters to run after the standard chain.
func (r *Request) Adapt(adapters ...Adapter) *Request {
	r.adapters = append(r.adapters, adapters...)
	return r
}

// Decisions sets the request's declared decision list, replacing any
// previous one. Every list must end in a decision that always applies
// and always terminates, such as ParseInto.
func (r *Request) Decisions(decisions ...Decision) *Request {
	r.decisions = decisions
	return r
}

// adapterChain derives the full ordered adapter sequence: method, then
// content, then optional bearer auth, then any custom adapters.
func (r *Request) adapterChain() []Adapter {
	chain := make([]Adapter, 0, 3+len(r.adapters))
	chain = append(chain, MethodAdapter(r.method))
	chain = append(chain, ContentAdapter(r.method, r.params, r.contentType))
	if r.bearer != nil {
		chain = append(chain, BearerAuthAdapter(r.bearer))
	}
	chain = append(chain, r.adapters...)
	return chain
}

// declaredDecisions returns a copy of the declared decision list, or nil
// when the request does not declare one.
func (r *Request) declaredDecisions() []Decision {
	return cloneDecisions(r.decisions)
}
