package connection

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenSkew is how long before its expiry a token is treated as stale.
const tokenSkew = 60 * time.Second

// tokenLifetimeMinutes is the lifetime requested from generateToken.
const tokenLifetimeMinutes = 60

// ensureToken returns the token to attach to the next request, refreshing it
// through generateToken when credentials are configured and the held token is
// absent or stale.
func (c *SiteConnection) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokenUsable() {
		return c.token, nil
	}
	if c.username == "" {
		// Nothing to refresh with. Send whatever is held, the server
		// decides whether a stale token is still acceptable.
		return c.token, nil
	}
	return c.refreshToken(ctx)
}

// tokenUsable reports whether the held token exists and is not about to
// expire. Callers hold c.mu.
func (c *SiteConnection) tokenUsable() bool {
	if c.token == "" {
		return false
	}
	return c.tokenExp.IsZero() || time.Until(c.tokenExp) > tokenSkew
}

// refreshToken posts generateToken and stores the result. Callers hold c.mu.
func (c *SiteConnection) refreshToken(ctx context.Context) (string, error) {
	form := map[string]string{
		"f":          "json",
		"username":   c.username,
		"password":   c.password,
		"expiration": strconv.Itoa(tokenLifetimeMinutes),
	}
	if c.referer != "" {
		form["client"] = "referer"
		form["referer"] = c.referer
	} else {
		form["client"] = "requestip"
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post("/generateToken")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}

	rec, err := decodeRecord(resp.Body())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	if rec.Has("error") {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, rec["error"])
	}
	token := rec.Str("token")
	if token == "" {
		return "", fmt.Errorf("%w: response carries no token", ErrTokenRequest)
	}

	c.token = token
	c.tokenExp = time.Time{}
	if expires, ok := rec["expires"].(float64); ok {
		c.tokenExp = time.UnixMilli(int64(expires))
	}
	c.log.Debug().Time("expires", c.tokenExp).Msg("token refreshed")

	return c.token, nil
}

// jwtExpiry extracts the exp claim from an OAuth-style access token without
// verifying the signature. Reports false when the value is not a JWT or
// carries no expiry.
func jwtExpiry(tokenString string) (time.Time, bool) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
