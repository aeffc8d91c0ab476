package conduit

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"
)

// MockTransport is a scriptable http.RoundTripper for testing the
// orchestration pipeline. Replies are enqueued in order and consumed
// one per transport call, which makes retry and refresh flows
// deterministic; a fallback reply answers once the queue is drained.
// Every request is recorded with its body captured.
type MockTransport struct {
	mu        sync.Mutex
	queue     []mockReply
	fallbacks []mockReply
	requests  []*http.Request
	bodies    [][]byte
}

type mockReply struct {
	status  int
	body    string
	header  http.Header
	err     error
	nilResp bool
	noBody  bool
	match   func(*http.Request) bool
}

// NewMockTransport creates an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Enqueue adds an ordered reply with the given status and body.
func (m *MockTransport) Enqueue(status int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{status: status, body: body})
	return m
}

// EnqueueError adds an ordered reply failing with err.
func (m *MockTransport) EnqueueError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{err: err})
	return m
}

// EnqueueNilResponse adds an ordered reply returning neither a response
// nor an error, the closest a RoundTripper gets to a non-HTTP result.
func (m *MockTransport) EnqueueNilResponse() *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{nilResp: true})
	return m
}

// EnqueueBodilessResponse adds an ordered reply whose response carries
// no body at all.
func (m *MockTransport) EnqueueBodilessResponse(status int) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{status: status, noBody: true})
	return m
}

// Respond adds a catch-all fallback reply used when the queue is empty.
func (m *MockTransport) Respond(status int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks = append(m.fallbacks, mockReply{status: status, body: body})
	return m
}

// RespondTo adds a fallback reply that only answers requests matching
// the predicate. Fallbacks are checked in order; predicates let one
// transport serve both a main endpoint and a refresh endpoint.
func (m *MockTransport) RespondTo(match func(*http.Request) bool, status int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks = append(m.fallbacks, mockReply{status: status, body: body, match: match})
	return m
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(req)

	var reply mockReply
	found := false
	if len(m.queue) > 0 {
		reply = m.queue[0]
		m.queue = m.queue[1:]
		found = true
	} else {
		for _, f := range m.fallbacks {
			if f.match == nil || f.match(req) {
				reply = f
				found = true
				break
			}
		}
	}
	if !found {
		return nil, errors.New("conduit: no stubbed reply for " + req.Method + " " + req.URL.String())
	}

	if reply.err != nil {
		return nil, reply.err
	}
	if reply.nilResp {
		return nil, nil
	}

	resp := &http.Response{
		StatusCode: reply.status,
		Status:     http.StatusText(reply.status),
		Header:     reply.header.Clone(),
		Request:    req,
	}
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	if !reply.noBody {
		resp.Body = io.NopCloser(bytes.NewBufferString(reply.body))
		resp.ContentLength = int64(len(reply.body))
	}
	return resp, nil
}

// record captures the request and its body, restoring the body so the
// transport contract is not disturbed.
func (m *MockTransport) record(req *http.Request) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
}

// Requests returns all recorded requests in order.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request{}, m.requests...)
}

// RequestCount returns the number of transport calls made.
func (m *MockTransport) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil if none.
func (m *MockTransport) LastRequest() *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// RequestBody returns the captured body of the i-th request.
func (m *MockTransport) RequestBody(i int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.bodies) {
		return nil
	}
	return m.bodies[i]
}

// Reset clears all recorded requests and stubbed replies.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
	m.fallbacks = nil
	m.requests = nil
	m.bodies = nil
}
