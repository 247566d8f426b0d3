package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultParticleURL is the Particle cloud API host.
const DefaultParticleURL = "https://api.particle.io"

// FunctionSetState is the cloud function the firmware registers for state updates.
const FunctionSetState = "setState"

// ParticleClient calls cloud functions on a Particle device.
type ParticleClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewParticleClient creates a client for baseURL, defaulting to [DefaultParticleURL] and [http.DefaultClient].
func NewParticleClient(baseURL string, client *http.Client) *ParticleClient {
	if baseURL == "" {
		baseURL = DefaultParticleURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ParticleClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// FunctionURL returns the endpoint for calling fn on deviceID.
func (p *ParticleClient) FunctionURL(deviceID, fn string) string {
	return fmt.Sprintf("%s/v1/devices/%s/%s", p.baseURL, url.PathEscape(deviceID), fn)
}

// Call POSTs arg to the cloud function fn as a form-encoded body with the access token.
//
// Any HTTP status is returned as a [Response]; only transport failures are errors.
func (p *ParticleClient) Call(ctx context.Context, deviceID, fn string, token *oauth2.Token, arg string) (*Response, error) {
	form := url.Values{}
	form.Set("access_token", token.AccessToken)
	form.Set("arg", arg)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.FunctionURL(deviceID, fn), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return do(p.httpClient, req)
}

// SetState calls the setState function with an encoded device command.
func (p *ParticleClient) SetState(ctx context.Context, deviceID string, token *oauth2.Token, arg string) (*Response, error) {
	return p.Call(ctx, deviceID, FunctionSetState, token, arg)
}
