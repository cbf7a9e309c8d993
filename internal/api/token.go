package api

import (
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessTokenCookie is the cookie the server issues the short-lived JWT in.
const accessTokenCookie = "accessToken"

// SessionExpiry decodes the access-token cookie without validating its
// signature (the client has no key) and reports when it expires. ok is false
// when no token cookie is held or its claims cannot be read.
func (c *Client) SessionExpiry() (time.Time, bool) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return time.Time{}, false
	}
	for _, ck := range c.hc.Jar.Cookies(u) {
		if ck.Name != accessTokenCookie {
			continue
		}
		var claims jwt.RegisteredClaims
		_, _ = jwt.ParseWithClaims(ck.Value, &claims, func(*jwt.Token) (any, error) { return nil, nil },
			jwt.WithoutClaimsValidation(),
		)
		if claims.ExpiresAt == nil {
			return time.Time{}, false
		}
		return claims.ExpiresAt.Time, true
	}
	return time.Time{}, false
}
