package linking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LinkFox/app/models"
)

func newRefreshEngine(tokenURL string, now time.Time) (*RefreshEngine, *memoryRepository) {
	registry := NewRegistry(map[Provider]Config{
		ProviderYouTube: {
			ClientID:       "yt-client",
			ClientSecret:   "yt-secret",
			AccessTokenURL: tokenURL,
		},
	})
	repo := newMemoryRepository()
	engine := NewRefreshEngine(registry, repo)
	engine.now = func() time.Time { return now }
	return engine, repo
}

func TestRefreshIfNeededRenewsExpiringToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"NEWAT","expires_in":3600}`))
	}))
	defer srv.Close()

	engine, repo := newRefreshEngine(srv.URL, now)

	expiresAt := now.Add(5 * time.Minute)
	account := &models.Account{
		ID:           7,
		Provider:     string(ProviderYouTube),
		AccessToken:  "OLDAT",
		RefreshToken: "RT1",
		ExpiresAt:    &expiresAt,
	}

	require.NoError(t, engine.RefreshIfNeeded(context.Background(), account))

	assert.Equal(t, "NEWAT", account.AccessToken)
	assert.Equal(t, "RT1", account.RefreshToken, "refresh token must not change")
	require.NotNil(t, account.ExpiresAt)
	assert.Equal(t, now.Add(3600*time.Second), *account.ExpiresAt)
	assert.Equal(t, 1, repo.saveCalls, "renewed account must be persisted")

	assert.Equal(t, "yt-client", gotForm.Get("client_id"))
	assert.Equal(t, "yt-secret", gotForm.Get("client_secret"))
	assert.Equal(t, "RT1", gotForm.Get("refresh_token"))
	assert.Equal(t, "refresh_token", gotForm.Get("grant_type"))
}

func TestRefreshIfNeededNoopWithoutRefreshToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	engine, repo := newRefreshEngine("http://127.0.0.1:0", now)

	expiresAt := now.Add(-time.Hour)
	account := &models.Account{Provider: string(ProviderFacebook), AccessToken: "AT", ExpiresAt: &expiresAt}

	require.NoError(t, engine.RefreshIfNeeded(context.Background(), account))
	assert.Equal(t, "AT", account.AccessToken)
	assert.Zero(t, repo.saveCalls)
}

func TestRefreshIfNeededNoopWhenNotExpiring(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	engine, repo := newRefreshEngine(srv.URL, now)

	expiresAt := now.Add(2 * time.Hour)
	account := &models.Account{
		Provider:     string(ProviderYouTube),
		AccessToken:  "AT",
		RefreshToken: "RT1",
		ExpiresAt:    &expiresAt,
	}

	require.NoError(t, engine.RefreshIfNeeded(context.Background(), account))
	assert.Zero(t, calls, "no upstream call outside the expiry margin")
	assert.Zero(t, repo.saveCalls)
}

func TestRefreshIfNeededGrantWithoutLifetimeClearsExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"NEWAT"}`))
	}))
	defer srv.Close()

	engine, repo := newRefreshEngine(srv.URL, now)

	expiresAt := now.Add(5 * time.Minute)
	account := &models.Account{
		ID:           7,
		Provider:     string(ProviderYouTube),
		AccessToken:  "OLDAT",
		RefreshToken: "RT1",
		ExpiresAt:    &expiresAt,
	}

	require.NoError(t, engine.RefreshIfNeeded(context.Background(), account))
	assert.Equal(t, "NEWAT", account.AccessToken)
	assert.Nil(t, account.ExpiresAt, "a grant without expires_in means the token does not expire")
	assert.Equal(t, 1, repo.saveCalls)

	// With the expiry cleared the next request must not refresh again.
	require.NoError(t, engine.RefreshIfNeeded(context.Background(), account))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, repo.saveCalls)
}

func TestRefreshIfNeededUpstreamFailureLeavesAccountUntouched(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_grant", http.StatusBadRequest)
	}))
	defer srv.Close()

	engine, repo := newRefreshEngine(srv.URL, now)

	expiresAt := now.Add(-time.Minute)
	account := &models.Account{
		Provider:     string(ProviderYouTube),
		AccessToken:  "OLDAT",
		RefreshToken: "RT1",
		ExpiresAt:    &expiresAt,
	}

	err := engine.RefreshIfNeeded(context.Background(), account)
	require.Error(t, err)
	assert.True(t, IsUpstreamError(err))
	assert.Equal(t, "OLDAT", account.AccessToken, "stale token stays in place")
	assert.Equal(t, expiresAt, *account.ExpiresAt)
	assert.Zero(t, repo.saveCalls)
}
