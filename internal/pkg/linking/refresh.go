package linking

import (
	"context"
	"net/url"
	"time"

	"github.com/ManuelReschke/LinkFox/app/models"
)

// RefreshEngine renews access tokens for accounts holding a refresh token
// (YouTube). Refreshes happen on demand when a client for the account is
// requested and the token is inside the expiry margin.
type RefreshEngine struct {
	registry *Registry
	repo     Repository

	now func() time.Time
}

func NewRefreshEngine(registry *Registry, repo Repository) *RefreshEngine {
	return &RefreshEngine{
		registry: registry,
		repo:     repo,
		now:      time.Now,
	}
}

// RefreshIfNeeded renews the account's access token when it is expiring
// soon, persisting the new token and expiry. Accounts without a refresh
// token or with plenty of lifetime left are left untouched. On upstream
// failure the stored token stays in place and the error is returned; callers
// decide whether a stale token is still worth using.
func (e *RefreshEngine) RefreshIfNeeded(ctx context.Context, account *models.Account) error {
	if account.RefreshToken == "" {
		return nil
	}
	if !account.IsExpiringSoon(e.now()) {
		return nil
	}

	cfg, ok := e.registry.Config(Provider(account.Provider))
	if !ok {
		return ErrUnknownProvider
	}

	grant, err := exchangeRefreshToken(ctx, Provider(account.Provider), cfg, account.RefreshToken)
	if err != nil {
		return err
	}

	account.AccessToken = grant.AccessToken
	if grant.ExpiresIn > 0 {
		expiresAt := e.now().Add(time.Duration(grant.ExpiresIn) * time.Second)
		account.ExpiresAt = &expiresAt
	} else {
		// A grant without a lifetime means the token does not expire.
		// Keeping the old in-margin expiry would trigger a refresh on
		// every subsequent client request.
		account.ExpiresAt = nil
	}

	return e.repo.SaveAccount(account)
}

// exchangeRefreshToken POSTs the refresh_token grant to the provider's
// token endpoint. The refresh token itself is not rotated by the providers
// supported here, so only access token and expiry come back.
func exchangeRefreshToken(ctx context.Context, provider Provider, cfg Config, refreshToken string) (TokenGrant, error) {
	h := NewCodeHandshake(provider, cfg)

	form := url.Values{}
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	body, err := h.postForm(ctx, "token refresh", cfg.AccessTokenURL, form)
	if err != nil {
		return TokenGrant{}, err
	}

	grant, err := ParseGoogleGrant(body)
	if err != nil {
		return TokenGrant{}, upstreamErr(provider, "token refresh", err)
	}
	return grant, nil
}
