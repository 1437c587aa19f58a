package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"teamstats/internal/config"
	"teamstats/internal/constants"
	"testing"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeOAuthServer(t *testing.T, gotVerifier *string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("oauth_token=req-token&oauth_token_secret=req-secret&oauth_callback_confirmed=true"))
	})
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		*gotVerifier = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("oauth_token=acc-token&oauth_token_secret=acc-secret"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testOAuthConfig(baseURL string) *oauth1.Config {
	return &oauth1.Config{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		CallbackURL:    "oob",
		HTTPClient:     &http.Client{Transport: NewTransport(), Timeout: time.Second},
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: baseURL + "/oauth/request_token",
			AuthorizeURL:    baseURL + "/oauth/authorize",
			AccessTokenURL:  baseURL + "/oauth/access_token",
		},
	}
}

func TestPINAuthorizer(t *testing.T) {
	var authHeader string
	srv := newFakeOAuthServer(t, &authHeader)

	var out bytes.Buffer
	authorizer := NewPINAuthorizer(testOAuthConfig(srv.URL), strings.NewReader(" 1234567 \n"), &out, zerolog.Nop())

	token, err := authorizer.Authorize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "acc-token", token.Token)
	assert.Equal(t, "acc-secret", token.TokenSecret)
	assert.Contains(t, out.String(), srv.URL+"/oauth/authorize?oauth_token=req-token")
	assert.Contains(t, out.String(), "Paste the PIN here")
	assert.Contains(t, authHeader, `oauth_verifier="1234567"`)
}

func TestPINAuthorizerEmptyPIN(t *testing.T) {
	var authHeader string
	srv := newFakeOAuthServer(t, &authHeader)

	authorizer := NewPINAuthorizer(testOAuthConfig(srv.URL), strings.NewReader("\n"), &bytes.Buffer{}, zerolog.Nop())

	_, err := authorizer.Authorize(context.Background())
	assert.ErrorContains(t, err, "empty pin")
	assert.Empty(t, authHeader)
}

func TestPINAuthorizerPINWithoutNewline(t *testing.T) {
	var authHeader string
	srv := newFakeOAuthServer(t, &authHeader)

	authorizer := NewPINAuthorizer(testOAuthConfig(srv.URL), strings.NewReader("42"), &bytes.Buffer{}, zerolog.Nop())

	token, err := authorizer.Authorize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-token", token.Token)
}

func TestStaticAuthorizer(t *testing.T) {
	token, err := StaticAuthorizer{Token: oauth1.NewToken("a", "b")}.Authorize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", token.Token)

	_, err = StaticAuthorizer{}.Authorize(context.Background())
	assert.Error(t, err)
}

func TestNewAuthorizerPrefersConfiguredToken(t *testing.T) {
	cfg := &config.Config{ConsumerKey: "k", ConsumerSecret: "s", AccessToken: "t", AccessSecret: "ts"}
	oauthCfg, err := NewOAuthConfig(cfg, NewTransport())
	require.NoError(t, err)
	assert.Equal(t, "oob", oauthCfg.CallbackURL)

	authorizer := NewAuthorizer(cfg, oauthCfg, Prompt{In: strings.NewReader(""), Out: &bytes.Buffer{}}, zerolog.Nop())
	assert.IsType(t, StaticAuthorizer{}, authorizer)

	cfg.AccessToken = ""
	authorizer = NewAuthorizer(cfg, oauthCfg, Prompt{In: strings.NewReader(""), Out: &bytes.Buffer{}}, zerolog.Nop())
	assert.IsType(t, &PINAuthorizer{}, authorizer)
}

func TestNewOAuthConfigRequiresCredentials(t *testing.T) {
	_, err := NewOAuthConfig(&config.Config{}, NewTransport())
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
}

func TestNewOAuthConfigUsesTransport(t *testing.T) {
	transport := NewTransport()
	oauthCfg, err := NewOAuthConfig(&config.Config{ConsumerKey: "k", ConsumerSecret: "s"}, transport)
	require.NoError(t, err)

	require.NotNil(t, oauthCfg.HTTPClient)
	assert.Same(t, transport, oauthCfg.HTTPClient.Transport)
	assert.Equal(t, constants.ExternalAPITimeout, oauthCfg.HTTPClient.Timeout)
}
