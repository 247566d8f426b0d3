package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/shared"
	tu "github.com/desertthunder/photon/internal/testing"
)

func TestParticleClient(t *testing.T) {
	token := &oauth2.Token{AccessToken: "secret-token", TokenType: "Bearer"}

	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			c := NewParticleClient("", nil)
			if c.baseURL != DefaultParticleURL {
				t.Errorf("expected default baseURL, got %s", c.baseURL)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Trailing Slash Trimmed", func(t *testing.T) {
			c := NewParticleClient("http://example.com/", nil)
			if got := c.FunctionURL("abc", "setState"); got != "http://example.com/v1/devices/abc/setState" {
				t.Errorf("unexpected URL %s", got)
			}
		})
	})

	t.Run("SetState", func(t *testing.T) {
		t.Run("Sends Form Encoded Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.URL.Path != "/v1/devices/dev-1/setState" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
					t.Errorf("unexpected Content-Type %s", ct)
				}
				if err := r.ParseForm(); err != nil {
					t.Fatalf("ParseForm: %v", err)
				}
				if r.PostForm.Get("access_token") != "secret-token" {
					t.Errorf("unexpected token %q", r.PostForm.Get("access_token"))
				}
				if r.PostForm.Get("arg") != `{"save":true}` {
					t.Errorf("unexpected arg %q", r.PostForm.Get("arg"))
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"dev-1","return_value":1}`))
			}))
			defer server.Close()

			c := NewParticleClient(server.URL, nil)
			resp, err := c.SetState(context.Background(), "dev-1", token, `{"save":true}`)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !resp.IsJSON {
				t.Errorf("unexpected response %+v", resp)
			}
			if rv, ok := resp.Field("return_value"); !ok || string(rv) != "1" {
				t.Errorf("expected return_value 1, got %s", rv)
			}
		})

		t.Run("Error Status Is Not An Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid_token","error_description":"The access token provided is invalid."}`))
			}))
			defer server.Close()

			resp, err := NewParticleClient(server.URL, nil).SetState(context.Background(), "dev-1", token, "{}")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("unexpected status %d", resp.StatusCode)
			}
			if resp.StringField("error_description") != "The access token provided is invalid." {
				t.Errorf("unexpected description %q", resp.StringField("error_description"))
			}
		})

		t.Run("Device ID Is Escaped", func(t *testing.T) {
			rt := tu.NewRecordingTransport(nil)
			c := NewParticleClient("http://particle.test", rt.Client())

			if _, err := c.SetState(context.Background(), "a/b", token, "{}"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			reqs := rt.Requests()
			if len(reqs) != 1 || !strings.Contains(reqs[0].URL, "/v1/devices/a%2Fb/setState") {
				t.Errorf("unexpected requests %+v", reqs)
			}
			form, _ := url.ParseQuery(string(reqs[0].Body))
			if form.Get("access_token") != "secret-token" {
				t.Errorf("unexpected form %v", form)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}

			_, err := NewParticleClient("http://example.com", client).SetState(context.Background(), "d", token, "{}")
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewParticleClient("http://example.com", client).SetState(context.Background(), "d", token, "{}")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("Deadline Exceeded", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}))
			defer server.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			_, err := NewParticleClient(server.URL, nil).SetState(ctx, "d", token, "{}")
			if !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
		})
	})
}

func TestResponse(t *testing.T) {
	t.Run("Field On Non Object", func(t *testing.T) {
		r := &Response{Body: []byte(`[1,2]`), IsJSON: true}
		if _, ok := r.Field("error"); ok {
			t.Error("array body should have no fields")
		}
	})

	t.Run("StringField Ignores Non Strings", func(t *testing.T) {
		r := &Response{Body: []byte(`{"error":{"code":1}}`), IsJSON: true}
		if r.StringField("error") != "" {
			t.Error("non string error should be ignored")
		}
	})

	t.Run("Not JSON", func(t *testing.T) {
		r := &Response{Body: []byte(`<html>`)}
		if _, ok := r.Field("x"); ok {
			t.Error("non json body should have no fields")
		}
	})
}

func TestRelayClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		c := NewRelayClient("", "", nil)
		if c.Endpoint() != DefaultRelayURL+DefaultRelayPath {
			t.Errorf("unexpected endpoint %s", c.Endpoint())
		}

		c = NewRelayClient("http://host:1/", "sync-endpoint", nil)
		if c.Endpoint() != "http://host:1/sync-endpoint" {
			t.Errorf("unexpected endpoint %s", c.Endpoint())
		}
	})

	t.Run("Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			w.Write([]byte(`{"configured":false,"hasToken":false,"hasDeviceId":true,"hint":"set it"}`))
		}))
		defer server.Close()

		d, err := NewRelayClient(server.URL, "/api/photon", nil).Status(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Configured || d.HasToken || !d.HasDeviceID || d.Hint != "set it" {
			t.Errorf("unexpected diagnostics %+v", d)
		}
	})

	t.Run("Sync", func(t *testing.T) {
		t.Run("Posts Payload", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("unexpected Content-Type %s", r.Header.Get("Content-Type"))
				}
				var p models.SyncPayload
				if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if p.Emotion != models.Positive || p.Hue == nil || *p.Hue != 45 || p.Personalizing != true {
					t.Errorf("unexpected payload %+v", p)
				}
				w.Write([]byte(`{"ok":true,"return_value":1}`))
			}))
			defer server.Close()

			payload := models.NewSyncPayload(models.Positive, models.Profile{Hue: 45, MotorSpeed: 50}, models.HueModel{}, true)
			reply, err := NewRelayClient(server.URL, "", nil).Sync(context.Background(), payload)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reply.OK || string(reply.ReturnValue) != "1" {
				t.Errorf("unexpected reply %+v", reply)
			}
		})

		t.Run("Error Reply", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"Missing emotion or hue"}`))
			}))
			defer server.Close()

			reply, err := NewRelayClient(server.URL, "", nil).Sync(context.Background(), models.SyncPayload{})
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "Missing emotion or hue") || reply.Error != "Missing emotion or hue" {
				t.Errorf("expected relay message, got %v", err)
			}
		})

		t.Run("Non JSON Error Reply", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("bad gateway"))
			}))
			defer server.Close()

			_, err := NewRelayClient(server.URL, "", nil).Sync(context.Background(), models.SyncPayload{})
			if err == nil || !strings.Contains(err.Error(), "Bad Gateway") {
				t.Errorf("expected status text in error, got %v", err)
			}
		})
	})

	t.Run("Save", func(t *testing.T) {
		t.Run("Acknowledged", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var p models.SyncPayload
				json.NewDecoder(r.Body).Decode(&p)
				if p.Action != models.ActionSave {
					t.Errorf("expected save action, got %+v", p)
				}
				w.Write([]byte(`{"ok":true,"saved":true}`))
			}))
			defer server.Close()

			if _, err := NewRelayClient(server.URL, "", nil).Save(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})

		t.Run("Not Acknowledged", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"ok":true}`))
			}))
			defer server.Close()

			_, err := NewRelayClient(server.URL, "", nil).Save(context.Background())
			if !errors.Is(err, shared.ErrUpstreamRejected) {
				t.Errorf("expected ErrUpstreamRejected, got %v", err)
			}
		})
	})
}
