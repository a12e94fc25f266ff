package linking

import (
	"context"
	"time"

	"github.com/ManuelReschke/LinkFox/app/models"
)

// Service orchestrates the linking flows: it hands out redirect targets,
// completes callbacks into persisted accounts and builds authenticated
// clients for stored accounts.
type Service struct {
	registry *Registry
	repo     Repository
	attempts AttemptStore
	refresh  *RefreshEngine

	now func() time.Time
}

func NewService(registry *Registry, repo Repository, attempts AttemptStore) *Service {
	return &Service{
		registry: registry,
		repo:     repo,
		attempts: attempts,
		refresh:  NewRefreshEngine(registry, repo),
		now:      time.Now,
	}
}

// BeginLink starts a linking attempt for the user and returns where to send
// them. Twitter performs the request-token leg here and parks the token
// secret in the attempt store; the OAuth2 providers only build a URL.
func (s *Service) BeginLink(_ context.Context, userID uint, provider Provider) (*BeginLinkResult, error) {
	cfg, ok := s.registry.Config(provider)
	if !ok {
		return nil, ErrUnknownProvider
	}

	switch provider {
	case ProviderTwitter:
		_, secret, authorizeURL, err := NewTwitterHandshake(cfg).Begin()
		if err != nil {
			return nil, err
		}
		key := NewAttemptKey()
		if err := s.attempts.Put(key, secret, AttemptTTL); err != nil {
			return nil, err
		}
		return &BeginLinkResult{RedirectURL: authorizeURL, AttemptKey: key}, nil
	case ProviderFacebook, ProviderYouTube:
		authorizeURL, err := NewCodeHandshake(provider, cfg).AuthorizeURL()
		if err != nil {
			return nil, err
		}
		return &BeginLinkResult{RedirectURL: authorizeURL}, nil
	}
	return nil, ErrUnknownProvider
}

// CompleteLink finishes a linking attempt with the provider's callback
// parameters. Parameter validation happens before any network call, and
// nothing is written to the store unless both the token exchange and the
// identity fetch succeed.
func (s *Service) CompleteLink(ctx context.Context, userID uint, provider Provider, params CallbackParams, attemptKey string) (*models.Account, error) {
	cfg, ok := s.registry.Config(provider)
	if !ok {
		return nil, ErrUnknownProvider
	}

	switch provider {
	case ProviderTwitter:
		return s.completeTwitter(userID, cfg, params, attemptKey)
	case ProviderFacebook, ProviderYouTube:
		return s.completeCode(ctx, userID, provider, cfg, params)
	}
	return nil, ErrUnknownProvider
}

func (s *Service) completeTwitter(userID uint, cfg Config, params CallbackParams, attemptKey string) (*models.Account, error) {
	if params.OAuthToken == "" || params.OAuthVerifier == "" {
		return nil, ErrMissingCallbackParams
	}
	if attemptKey == "" {
		return nil, ErrAttemptNotFound
	}
	requestSecret, err := s.attempts.Take(attemptKey)
	if err != nil {
		return nil, err
	}

	accessToken, accessSecret, identity, err := NewTwitterHandshake(cfg).
		Complete(params.OAuthToken, params.OAuthVerifier, requestSecret)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:              userID,
		Provider:            string(ProviderTwitter),
		ProviderAccountID:   identity.ProviderAccountID,
		ProviderDisplayName: identity.DisplayName,
		AccessToken:         accessToken,
		AccessTokenSecret:   accessSecret,
	}
	if err := s.repo.UpsertAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) completeCode(ctx context.Context, userID uint, provider Provider, cfg Config, params CallbackParams) (*models.Account, error) {
	if params.Code == "" {
		return nil, ErrMissingCallbackParams
	}

	handshake := NewCodeHandshake(provider, cfg)
	grant, err := handshake.Exchange(ctx, params.Code)
	if err != nil {
		return nil, err
	}
	identity, err := handshake.FetchIdentity(ctx, grant.AccessToken)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:              userID,
		Provider:            string(provider),
		ProviderAccountID:   identity.ProviderAccountID,
		ProviderDisplayName: identity.DisplayName,
		AccessToken:         grant.AccessToken,
		RefreshToken:        grant.RefreshToken,
	}
	if grant.ExpiresIn > 0 {
		expiresAt := s.now().Add(time.Duration(grant.ExpiresIn) * time.Second)
		account.ExpiresAt = &expiresAt
	}
	if err := s.repo.UpsertAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns all accounts linked by the user.
func (s *Service) ListAccounts(userID uint) ([]models.Account, error) {
	return s.repo.FindAccountsByUser(userID)
}
