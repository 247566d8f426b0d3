package shared

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

const (
	EnvAccessToken = "PARTICLE_ACCESS_TOKEN"
	EnvDeviceID    = "PARTICLE_DEVICE_ID"
)

var _ oauth2.TokenSource = (*EnvCredentials)(nil)

// EnvCredentials reads the Particle access token and device id from the environment on every call.
//
// Nothing is cached, so rotating a variable takes effect on the next request.
type EnvCredentials struct {
	lookup func(string) string
}

// NewEnvCredentials creates [EnvCredentials] backed by lookup, defaulting to [os.Getenv].
func NewEnvCredentials(lookup func(string) string) *EnvCredentials {
	if lookup == nil {
		lookup = os.Getenv
	}
	return &EnvCredentials{lookup: lookup}
}

// CredentialStatus reports which required values are present, never the values themselves.
type CredentialStatus struct {
	HasToken    bool
	HasDeviceID bool
}

// Configured reports whether both values are present.
func (s CredentialStatus) Configured() bool {
	return s.HasToken && s.HasDeviceID
}

// Status reports which credentials are currently set.
func (c *EnvCredentials) Status() CredentialStatus {
	return CredentialStatus{
		HasToken:    c.value(EnvAccessToken) != "",
		HasDeviceID: c.value(EnvDeviceID) != "",
	}
}

// Token implements [oauth2.TokenSource] with the static bearer credential.
func (c *EnvCredentials) Token() (*oauth2.Token, error) {
	token := &oauth2.Token{AccessToken: c.value(EnvAccessToken), TokenType: "Bearer"}
	if !token.Valid() {
		return nil, fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvAccessToken)
	}
	return token, nil
}

// DeviceID returns the configured device identifier.
func (c *EnvCredentials) DeviceID() (string, error) {
	id := c.value(EnvDeviceID)
	if id == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvDeviceID)
	}
	return id, nil
}

func (c *EnvCredentials) value(key string) string {
	return strings.TrimSpace(c.lookup(key))
}
