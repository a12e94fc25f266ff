package linking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LinkFox/app/models"
)

// authHeaderSeenBy fires one request through the client and reports the
// Authorization header the upstream saw.
func authHeaderSeenBy(t *testing.T, client *http.Client) string {
	t.Helper()
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	return got
}

func TestClientForTwitterSignsRequests(t *testing.T) {
	svc, _ := newTestService(map[Provider]Config{
		ProviderTwitter: {ClientID: "tw-key", ClientSecret: "tw-secret"},
	})

	account := &models.Account{
		Provider:          string(ProviderTwitter),
		AccessToken:       "ACCESSTOKEN",
		AccessTokenSecret: "ACCESSSECRET",
	}

	client, err := svc.ClientFor(context.Background(), account)
	require.NoError(t, err)
	require.NotNil(t, client)

	header := authHeaderSeenBy(t, client)
	assert.Contains(t, header, "OAuth")
	assert.Contains(t, header, `oauth_token="ACCESSTOKEN"`)
	assert.Contains(t, header, `oauth_consumer_key="tw-key"`)
}

func TestClientForFacebookSendsBearerToken(t *testing.T) {
	svc, repo := newTestService(map[Provider]Config{ProviderFacebook: {}})

	account := &models.Account{
		Provider:    string(ProviderFacebook),
		AccessToken: "FBTOKEN",
	}

	client, err := svc.ClientFor(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, "Bearer FBTOKEN", authHeaderSeenBy(t, client))
	assert.Zero(t, repo.saveCalls)
}

func TestClientForYouTubeRefreshesExpiringToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"NEWAT","expires_in":3600}`))
	}))
	defer srv.Close()

	svc, repo := newTestService(map[Provider]Config{
		ProviderYouTube: {
			ClientID:       "yt-client",
			ClientSecret:   "yt-secret",
			AccessTokenURL: srv.URL,
		},
	})
	svc.refresh.now = func() time.Time { return now }

	expiresAt := now.Add(5 * time.Minute)
	account := &models.Account{
		ID:           4,
		Provider:     string(ProviderYouTube),
		AccessToken:  "OLDAT",
		RefreshToken: "RT1",
		ExpiresAt:    &expiresAt,
	}

	client, err := svc.ClientFor(context.Background(), account)
	require.NoError(t, err)

	assert.Equal(t, "Bearer NEWAT", authHeaderSeenBy(t, client))
	assert.Equal(t, "NEWAT", account.AccessToken)
	assert.Equal(t, 1, repo.saveCalls, "renewed token must be persisted")
}

func TestClientForYouTubeRefreshFailureFallsBackToStaleToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_grant", http.StatusBadRequest)
	}))
	defer srv.Close()

	svc, repo := newTestService(map[Provider]Config{
		ProviderYouTube: {
			ClientID:       "yt-client",
			ClientSecret:   "yt-secret",
			AccessTokenURL: srv.URL,
		},
	})
	svc.refresh.now = func() time.Time { return now }

	expiresAt := now.Add(-time.Minute)
	account := &models.Account{
		ID:           4,
		Provider:     string(ProviderYouTube),
		AccessToken:  "STALE",
		RefreshToken: "RT1",
		ExpiresAt:    &expiresAt,
	}

	client, err := svc.ClientFor(context.Background(), account)
	require.NoError(t, err, "a failed refresh must not prevent client construction")
	require.NotNil(t, client)

	assert.Equal(t, "Bearer STALE", authHeaderSeenBy(t, client))
	assert.Equal(t, "STALE", account.AccessToken)
	assert.Equal(t, expiresAt, *account.ExpiresAt)
	assert.Zero(t, repo.saveCalls, "failed refresh must not write to the store")
}

func TestClientForUnknownProvider(t *testing.T) {
	svc, _ := newTestService(map[Provider]Config{})

	account := &models.Account{Provider: "myspace", AccessToken: "AT"}
	_, err := svc.ClientFor(context.Background(), account)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
