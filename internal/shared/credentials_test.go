package shared

import (
	"errors"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestEnvCredentials(t *testing.T) {
	tt := []struct {
		name       string
		env        map[string]string
		wantStatus CredentialStatus
	}{
		{
			name:       "both set",
			env:        map[string]string{EnvAccessToken: "tok", EnvDeviceID: "dev"},
			wantStatus: CredentialStatus{HasToken: true, HasDeviceID: true},
		},
		{
			name:       "only device id",
			env:        map[string]string{EnvDeviceID: "dev"},
			wantStatus: CredentialStatus{HasToken: false, HasDeviceID: true},
		},
		{
			name:       "whitespace token counts as missing",
			env:        map[string]string{EnvAccessToken: "   ", EnvDeviceID: "dev"},
			wantStatus: CredentialStatus{HasToken: false, HasDeviceID: true},
		},
		{
			name:       "nothing set",
			env:        map[string]string{},
			wantStatus: CredentialStatus{},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			creds := NewEnvCredentials(envMap(tc.env))
			status := creds.Status()

			if status != tc.wantStatus {
				t.Errorf("Status() = %+v, want %+v", status, tc.wantStatus)
			}
			if status.Configured() != (tc.wantStatus.HasToken && tc.wantStatus.HasDeviceID) {
				t.Errorf("Configured() = %v", status.Configured())
			}

			token, err := creds.Token()
			if tc.wantStatus.HasToken {
				if err != nil {
					t.Fatalf("Token() error = %v", err)
				}
				if token.AccessToken != "tok" || token.Type() != "Bearer" {
					t.Errorf("unexpected token %+v", token)
				}
			} else if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}

			_, err = creds.DeviceID()
			if tc.wantStatus.HasDeviceID != (err == nil) {
				t.Errorf("DeviceID() error = %v", err)
			}
		})
	}

	t.Run("re-reads environment on every call", func(t *testing.T) {
		env := map[string]string{}
		creds := NewEnvCredentials(envMap(env))

		if creds.Status().HasToken {
			t.Fatal("expected no token initially")
		}
		env[EnvAccessToken] = "later"
		if !creds.Status().HasToken {
			t.Error("expected token after environment changed")
		}
	})

	t.Run("nil lookup defaults to os.Getenv", func(t *testing.T) {
		t.Setenv(EnvDeviceID, "from-os")
		id, err := NewEnvCredentials(nil).DeviceID()
		if err != nil || id != "from-os" {
			t.Errorf("DeviceID() = %q, %v", id, err)
		}
	})
}
