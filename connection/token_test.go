package connection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akochman/ArcREST/models"
)

// makeJWT builds an unsigned JWT carrying only an exp claim.
func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims, err := json.Marshal(map[string]any{"exp": exp.Unix()})
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(claims) + ".sig"
}

// tokenServer answers generateToken with the given token and serves
// {"data": true} on every other path, asserting the token arrived.
func tokenServer(t *testing.T, token string, expires time.Time, refreshes *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/generateToken" {
			refreshes.Add(1)
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "json", r.PostFormValue("f"))
			assert.Equal(t, "alice", r.PostFormValue("username"))
			assert.Equal(t, "wonder", r.PostFormValue("password"))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"token":   token,
				"expires": expires.UnixMilli(),
			})
			return
		}

		assert.Equal(t, token, r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{"data": true}`))
	}))
}

func TestEnsureToken_RefreshesOnceAndReuses(t *testing.T) {
	var refreshes atomic.Int32
	srv := tokenServer(t, "tok-1", time.Now().Add(time.Hour), &refreshes)
	defer srv.Close()

	c := newTestConnection(t, Config{BaseURL: srv.URL, Username: "alice", Password: "wonder"})

	_, err := c.Get(context.Background(), "/services", models.Params{"f": "json"})
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "/services", models.Params{"f": "json"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), refreshes.Load())
}

func TestEnsureToken_ExpiredTokenRefetches(t *testing.T) {
	var refreshes atomic.Int32
	// The returned expiry is already in the past, so every request refreshes.
	srv := tokenServer(t, "tok-stale", time.Now().Add(-time.Minute), &refreshes)
	defer srv.Close()

	c := newTestConnection(t, Config{BaseURL: srv.URL, Username: "alice", Password: "wonder"})

	_, err := c.Get(context.Background(), "/services", models.Params{"f": "json"})
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "/services", models.Params{"f": "json"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), refreshes.Load())
}

func TestEnsureToken_ClientModeFollowsReferer(t *testing.T) {
	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/generateToken" {
			require.NoError(t, r.ParseForm())
			seen <- r.PostFormValue("client") + "|" + r.PostFormValue("referer")
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestConnection(t, Config{
		BaseURL: srv.URL, Username: "alice", Password: "wonder",
		Referer: "https://app.example.com",
	})
	_, err := c.Get(context.Background(), "/services", models.Params{"f": "json"})
	require.NoError(t, err)
	assert.Equal(t, "referer|https://app.example.com", <-seen)

	c = newTestConnection(t, Config{BaseURL: srv.URL, Username: "alice", Password: "wonder"})
	_, err = c.Get(context.Background(), "/services", models.Params{"f": "json"})
	require.NoError(t, err)
	assert.Equal(t, "requestip|", <-seen)
}

func TestEnsureToken_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/generateToken" {
			_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "Unable to generate token."}}`))
			return
		}
		t.Error("request must not proceed past a failed token acquisition")
	}))
	defer srv.Close()

	c := newTestConnection(t, Config{BaseURL: srv.URL, Username: "alice", Password: "bad"})
	_, err := c.Get(context.Background(), "/services", models.Params{"f": "json"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenRequest)
}

func TestNew_ReadsJWTExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	c := newTestConnection(t, Config{BaseURL: "example.com", Token: makeJWT(t, exp)})

	assert.Equal(t, exp.Unix(), c.tokenExp.Unix())
}

func TestNew_OpaqueTokenHasNoExpiry(t *testing.T) {
	c := newTestConnection(t, Config{BaseURL: "example.com", Token: "opaque-token"})
	assert.True(t, c.tokenExp.IsZero())
}

func TestEnsureToken_StaleStaticTokenWithoutCredsIsSentAnyway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestConnection(t, Config{
		BaseURL:         srv.URL,
		Token:           "stale",
		TokenExpiration: time.Now().Add(-time.Hour),
	})

	_, err := c.Get(context.Background(), "/services", models.Params{"f": "json"})
	require.NoError(t, err)
}
