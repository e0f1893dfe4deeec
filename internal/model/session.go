package model

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Session is the credential pair that gates all confirmation calls for an
// account. The access token is short-lived and can be renewed with the
// refresh token; once the refresh token itself expires only a full
// re-login (outside this application) can restore the session.
type Session struct {
	Token     oauth2.Token
	SessionID string
}

// IsAccessTokenExpired reports whether the short-lived access token needs
// a refresh before the session can be used.
func (s *Session) IsAccessTokenExpired() bool {
	if s.Token.AccessToken == "" {
		return true
	}
	if !s.Token.Expiry.IsZero() {
		return time.Now().After(s.Token.Expiry)
	}
	return tokenExpired(s.Token.AccessToken)
}

// IsRefreshTokenExpired reports whether the long-lived refresh token has
// expired. A token that cannot be parsed is treated as expired, forcing a
// re-login rather than a doomed refresh attempt.
func (s *Session) IsRefreshTokenExpired() bool {
	if s.Token.RefreshToken == "" {
		return true
	}
	return tokenExpired(s.Token.RefreshToken)
}

// tokenExpired reads the exp claim out of a JWT payload. This is a plain
// base64/JSON decode of the middle segment; signature verification is the
// issuer's concern, not ours.
func tokenExpired(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return true
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return true
	}

	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return true
	}

	return time.Now().Unix() >= claims.Exp
}
