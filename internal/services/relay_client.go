package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/shared"
)

const (
	DefaultRelayURL  = "http://127.0.0.1:3000"
	DefaultRelayPath = "/api/photon"
)

// RelayClient talks to the relay endpoint on behalf of the dashboard.
type RelayClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewRelayClient creates a client for the relay at baseURL + path.
func NewRelayClient(baseURL, path string, client *http.Client) *RelayClient {
	if baseURL == "" {
		baseURL = DefaultRelayURL
	}
	if path == "" {
		path = DefaultRelayPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RelayClient{endpoint: strings.TrimRight(baseURL, "/") + path, httpClient: client}
}

// Endpoint returns the full relay URL.
func (c *RelayClient) Endpoint() string {
	return c.endpoint
}

// Status fetches the relay's configuration diagnostics.
func (c *RelayClient) Status(ctx context.Context) (*models.Diagnostics, error) {
	req, err := newJSONRequest(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := do(c.httpClient, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var d models.Diagnostics
	if err := json.Unmarshal(resp.Body, &d); err != nil {
		return nil, fmt.Errorf("%w: invalid diagnostics response: %v", shared.ErrAPIRequest, err)
	}
	return &d, nil
}

// Sync posts a payload to the relay.
//
// A non-2xx reply returns the decoded reply together with an error wrapping
// [shared.ErrAPIRequest] so callers can show the relay's message.
func (c *RelayClient) Sync(ctx context.Context, payload models.SyncPayload) (*models.RelayReply, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, c.endpoint, payload)
	if err != nil {
		return nil, err
	}
	resp, err := do(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	var reply models.RelayReply
	if resp.IsJSON {
		_ = json.Unmarshal(resp.Body, &reply)
	}

	if !resp.OK() {
		msg := reply.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &reply, fmt.Errorf("%w: %s (%d)", shared.ErrAPIRequest, msg, resp.StatusCode)
	}
	return &reply, nil
}

// Save asks the device to persist its current state.
func (c *RelayClient) Save(ctx context.Context) (*models.RelayReply, error) {
	reply, err := c.Sync(ctx, models.SavePayload())
	if err != nil {
		return reply, err
	}
	if !reply.Saved {
		return reply, fmt.Errorf("%w: save not acknowledged", shared.ErrUpstreamRejected)
	}
	return reply, nil
}
