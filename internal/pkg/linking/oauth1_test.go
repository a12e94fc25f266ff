package linking

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTwitterStub fakes the three Twitter endpoints the handshake talks to.
func newTwitterStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("oauth_token=REQTOKEN&oauth_token_secret=REQSECRET&oauth_callback_confirmed=true"))
	})
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("oauth_token=ACCESSTOKEN&oauth_token_secret=ACCESSSECRET"))
	})
	mux.HandleFunc("/1.1/account/verify_credentials.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":123456,"screen_name":"johndoe"}`))
	})
	return httptest.NewServer(mux)
}

func twitterStubConfig(srv *httptest.Server) Config {
	return Config{
		ClientID:        "consumer-key",
		ClientSecret:    "consumer-secret",
		CallbackURL:     "https://example.com/accounts/new/twitter/callback",
		RequestTokenURL: srv.URL + "/oauth/request_token",
		AuthorizeURL:    srv.URL + "/oauth/authorize",
		AccessTokenURL:  srv.URL + "/oauth/access_token",
		APIBaseURL:      srv.URL + "/1.1/",
	}
}

func TestTwitterBegin(t *testing.T) {
	srv := newTwitterStub(t)
	defer srv.Close()

	h := NewTwitterHandshake(twitterStubConfig(srv))
	token, secret, authorizeURL, err := h.Begin()
	require.NoError(t, err)

	assert.Equal(t, "REQTOKEN", token)
	assert.Equal(t, "REQSECRET", secret)
	assert.True(t, strings.HasPrefix(authorizeURL, srv.URL+"/oauth/authorize"))
	assert.Contains(t, authorizeURL, "oauth_token=REQTOKEN")
}

func TestTwitterBeginUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := twitterStubConfig(srv)
	cfg.RequestTokenURL = srv.URL + "/oauth/request_token"

	_, _, _, err := NewTwitterHandshake(cfg).Begin()
	require.Error(t, err)
	assert.True(t, IsUpstreamError(err))
}

func TestTwitterComplete(t *testing.T) {
	srv := newTwitterStub(t)
	defer srv.Close()

	h := NewTwitterHandshake(twitterStubConfig(srv))
	accessToken, accessSecret, identity, err := h.Complete("REQTOKEN", "the-verifier", "REQSECRET")
	require.NoError(t, err)

	assert.Equal(t, "ACCESSTOKEN", accessToken)
	assert.Equal(t, "ACCESSSECRET", accessSecret)
	assert.Equal(t, "123456", identity.ProviderAccountID)
	assert.Equal(t, "johndoe", identity.DisplayName)
}

func TestTwitterCompleteIdentityFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("oauth_token=ACCESSTOKEN&oauth_token_secret=ACCESSSECRET"))
	})
	mux.HandleFunc("/1.1/account/verify_credentials.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over capacity", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := NewTwitterHandshake(twitterStubConfig(srv))
	_, _, _, err := h.Complete("REQTOKEN", "the-verifier", "REQSECRET")
	require.Error(t, err)
	assert.True(t, IsUpstreamError(err))
}
