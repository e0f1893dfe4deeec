package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeJWT builds an unsigned token with the given expiry, enough for the
// claim parsing the session does.
func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"EdDSA","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{
		"iss": "steam",
		"exp": exp.Unix(),
	})
	require.NoError(t, err)

	return fmt.Sprintf("%s.%s.sig", header, base64.RawURLEncoding.EncodeToString(payload))
}

func TestSession_IsAccessTokenExpired(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) Session
		expired bool
	}{
		{
			name: "empty token is expired",
			setup: func(_ *testing.T) Session {
				return Session{}
			},
			expired: true,
		},
		{
			name: "explicit expiry in the future",
			setup: func(_ *testing.T) Session {
				s := Session{}
				s.Token.AccessToken = "opaque"
				s.Token.Expiry = time.Now().Add(time.Hour)
				return s
			},
			expired: false,
		},
		{
			name: "explicit expiry in the past",
			setup: func(_ *testing.T) Session {
				s := Session{}
				s.Token.AccessToken = "opaque"
				s.Token.Expiry = time.Now().Add(-time.Minute)
				return s
			},
			expired: true,
		},
		{
			name: "JWT exp in the future",
			setup: func(t *testing.T) Session {
				s := Session{}
				s.Token.AccessToken = makeJWT(t, time.Now().Add(time.Hour))
				return s
			},
			expired: false,
		},
		{
			name: "JWT exp in the past",
			setup: func(t *testing.T) Session {
				s := Session{}
				s.Token.AccessToken = makeJWT(t, time.Now().Add(-time.Hour))
				return s
			},
			expired: true,
		},
		{
			name: "unparsable token is expired",
			setup: func(_ *testing.T) Session {
				s := Session{}
				s.Token.AccessToken = "not-a-jwt"
				return s
			},
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := tt.setup(t)
			assert.Equal(t, tt.expired, session.IsAccessTokenExpired())
		})
	}
}

func TestSession_IsRefreshTokenExpired(t *testing.T) {
	s := Session{}
	assert.True(t, s.IsRefreshTokenExpired(), "empty refresh token")

	s.Token.RefreshToken = makeJWT(t, time.Now().Add(24*time.Hour))
	assert.False(t, s.IsRefreshTokenExpired())

	s.Token.RefreshToken = makeJWT(t, time.Now().Add(-time.Second))
	assert.True(t, s.IsRefreshTokenExpired())

	s.Token.RefreshToken = "garbage"
	assert.True(t, s.IsRefreshTokenExpired(), "unparsable token forces re-login")
}
