// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// RecordedRequest is a captured outbound request with its body already read.
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// RecordingTransport serves outbound requests from an in-process [http.Handler]
// and records every request it sees.
//
// A nil handler answers 200 with an empty JSON object.
type RecordingTransport struct {
	mu       sync.Mutex
	handler  http.Handler
	requests []RecordedRequest
}

func NewRecordingTransport(h http.Handler) *RecordingTransport {
	if h == nil {
		h = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{}"))
		})
	}
	return &RecordingTransport{handler: h}
}

func (rt *RecordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
		body = b
	}

	rt.mu.Lock()
	rt.requests = append(rt.requests, RecordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	rt.mu.Unlock()

	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	replay := req.Clone(req.Context())
	replay.Body = io.NopCloser(bytes.NewReader(body))

	rec := httptest.NewRecorder()
	rt.handler.ServeHTTP(rec, replay)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// Count returns the number of requests seen so far.
func (rt *RecordingTransport) Count() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.requests)
}

// Requests returns a copy of the recorded requests.
func (rt *RecordingTransport) Requests() []RecordedRequest {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]RecordedRequest, len(rt.requests))
	copy(out, rt.requests)
	return out
}

// Client returns an [http.Client] using the transport.
func (rt *RecordingTransport) Client() *http.Client {
	return &http.Client{Transport: rt}
}

// MemoryPlayer records Play and Stop calls instead of producing audio.
type MemoryPlayer struct {
	mu      sync.Mutex
	Played  []string
	Stops   int
	PlayErr error
}

func (p *MemoryPlayer) Play(_ context.Context, trackID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PlayErr != nil {
		return p.PlayErr
	}
	p.Played = append(p.Played, trackID)
	return nil
}

func (p *MemoryPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Stops++
	return nil
}

// Snapshot returns the played tracks and stop count.
func (p *MemoryPlayer) Snapshot() ([]string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Played))
	copy(out, p.Played)
	return out, p.Stops
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
