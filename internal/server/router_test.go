package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/services"
	"github.com/desertthunder/photon/internal/shared"
	tu "github.com/desertthunder/photon/internal/testing"
)

type staticHandler struct {
	routes []string
	body   string
}

func (s staticHandler) Routes() []string { return s.routes }

func (s staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(s.body))
}

func TestBasicRouter(t *testing.T) {
	t.Run("Handle With Method", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("unexpected %d %s", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), MsgMethodNotAllowed) {
			t.Errorf("expected JSON error body, got %s", rec.Body.String())
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		r := NewBasicRouter()
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type, got %s", rec.Header().Get("Content-Type"))
		}
	})

	t.Run("Handler Registers All Routes", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handler(staticHandler{routes: []string{"/a", "/b"}, body: "ok"})

		for _, path := range []string{"/a", "/b"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, path, nil))
			if rec.Body.String() != "ok" {
				t.Errorf("%s: unexpected body %s", path, rec.Body.String())
			}
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.Handler(staticHandler{routes: []string{"/x"}})
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("RequestLogger Sets Request ID", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)

		h := RequestLogger(logger)(staticHandler{body: "ok"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		id := rec.Header().Get(HeaderRequestID)
		if id == "" {
			t.Fatal("expected request id header")
		}
		if !strings.Contains(buf.String(), id) || !strings.Contains(buf.String(), "/x") {
			t.Errorf("expected request log line, got %q", buf.String())
		}
	})

	t.Run("RequestLogger Reuses Incoming ID", func(t *testing.T) {
		h := RequestLogger(shared.NewLogger(io.Discard))(staticHandler{})
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Header().Get(HeaderRequestID) != "abc-123" {
			t.Errorf("unexpected id %s", rec.Header().Get(HeaderRequestID))
		}
	})

	t.Run("Recoverer", func(t *testing.T) {
		var buf bytes.Buffer
		h := Recoverer(shared.NewLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "boom") {
			t.Errorf("expected panic to be logged, got %q", buf.String())
		}
	})
}

func TestRelayRouter(t *testing.T) {
	rt := tu.NewRecordingTransport(upstream(http.StatusOK, `{"return_value":1}`))
	relay, err := NewRelayHandler(RelayOptions{
		Credentials: shared.NewEnvCredentials(envLookup(configured())),
		Device:      services.NewParticleClient("http://particle.test", rt.Client()),
		Colors:      models.HueModel{},
		Motor:       true,
	})
	if err != nil {
		t.Fatalf("NewRelayHandler: %v", err)
	}
	router := NewRelayRouter(relay, shared.NewLogger(io.Discard))

	t.Run("Health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
			t.Errorf("unexpected %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Both Relay Paths", func(t *testing.T) {
		for _, path := range []string{"/api/photon", "/sync-endpoint"} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"emotion":"positive","hue":10}`))
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", path, rec.Code)
			}
			if rec.Header().Get(HeaderRequestID) == "" {
				t.Errorf("%s: expected request id", path)
			}
		}
	})
}

func TestServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	r := NewBasicRouter()
	r.Handler(HealthHandler{})
	srv := NewServer(ln.Addr().String(), r, shared.NewLogger(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	var resp *http.Response
	for range 50 {
		resp, err = http.Get("http://" + ln.Addr().String() + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
