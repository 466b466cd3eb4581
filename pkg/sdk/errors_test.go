package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"401", &StatusError{Backend: BackendMember, StatusCode: http.StatusUnauthorized}, ErrAuthInvalid},
		{"403", &StatusError{Backend: BackendMember, StatusCode: http.StatusForbidden}, ErrAuthInvalid},
		{"400", &StatusError{Backend: BackendMember, StatusCode: http.StatusBadRequest}, ErrAuthInvalid},
		{"429", &StatusError{Backend: BackendMember, StatusCode: http.StatusTooManyRequests}, ErrAuthTransient},
		{"503", &StatusError{Backend: BackendMember, StatusCode: http.StatusServiceUnavailable}, ErrAuthTransient},
		{"timeout", fmt.Errorf("GET /auth/profile: %w", context.DeadlineExceeded), ErrAuthTransient},
		{"malformed", fmt.Errorf("%w: bad", ErrDataUnavailable), ErrDataUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(classifyAuthError(tt.err), tt.want))
		})
	}
	assert.NoError(t, classifyAuthError(nil))
}

func TestAccessErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("read: %w", &AccessError{Capability: CapViewProfile, Decision: Teaser})
	assert.True(t, errors.Is(err, ErrAccessDenied))

	var accessErr *AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, Teaser, accessErr.Decision)
}

func TestLoginCredentialsValidate(t *testing.T) {
	tests := []struct {
		name  string
		creds LoginCredentials
		field string
	}{
		{"valid", LoginCredentials{CIF: "12345678", Password: "pw"}, ""},
		{"empty cif", LoginCredentials{Password: "pw"}, "cif"},
		{"letters", LoginCredentials{CIF: "12ab5678", Password: "pw"}, "cif"},
		{"too short", LoginCredentials{CIF: "123", Password: "pw"}, "cif"},
		{"too long", LoginCredentials{CIF: "12345678901234567", Password: "pw"}, "cif"},
		{"empty password", LoginCredentials{CIF: "12345678"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCheckEnvCreds(t *testing.T) {
	t.Setenv("MALLPASS_CIF", "12345678")
	t.Setenv("MALLPASS_PASSWORD", "")
	ok, _ := CheckEnvCreds()
	assert.False(t, ok)

	t.Setenv("MALLPASS_PASSWORD", "demo123")
	ok, creds := CheckEnvCreds()
	assert.True(t, ok)
	assert.Equal(t, "12345678", creds.CIF)
}

func TestDecodeLogin(t *testing.T) {
	profile, err := json.Marshal(DemoProfile("12345678"))
	require.NoError(t, err)

	result, err := decodeLogin(json.RawMessage(`{"token":"abc","profile":` + string(profile) + `}`))
	require.NoError(t, err)
	assert.Equal(t, AuthToken("abc"), result.Token)
	assert.Equal(t, TierGold, result.Profile.Tier)

	bad := []string{
		`{"profile":` + string(profile) + `}`,
		`{"token":"","profile":` + string(profile) + `}`,
		`{"token":"abc","profile":{"cif":"1","name":"x","memberTier":"Bronze"}}`,
		`{"token":"abc","profile":{"cif":"1","name":"x","memberTier":"Gold","tierProgress":{"current":30,"target":10}}}`,
		`[1,2]`,
	}
	for _, raw := range bad {
		_, err := decodeLogin(json.RawMessage(raw))
		assert.True(t, errors.Is(err, ErrDataUnavailable), raw)
	}
}
