package linking

import (
	"context"
	"log"
	"net/http"

	"github.com/mrjones/oauth"
	"golang.org/x/oauth2"

	"github.com/ManuelReschke/LinkFox/app/models"
)

// ClientFor returns an HTTP client authenticated as the linked account.
// Twitter clients sign every request with the stored token pair; Facebook
// and YouTube clients send the access token as a Bearer header.
//
// For YouTube the refresh engine runs first, so fetching a client can
// persist a renewed token as a side effect. A failed refresh is logged and
// the stale token used; the provider will reject it downstream, which is no
// worse than failing here.
func (s *Service) ClientFor(ctx context.Context, account *models.Account) (*http.Client, error) {
	cfg, ok := s.registry.Config(Provider(account.Provider))
	if !ok {
		return nil, ErrUnknownProvider
	}

	switch Provider(account.Provider) {
	case ProviderTwitter:
		consumer := NewTwitterHandshake(cfg).consumer()
		return consumer.MakeHttpClient(&oauth.AccessToken{
			Token:  account.AccessToken,
			Secret: account.AccessTokenSecret,
		})
	case ProviderFacebook:
		return bearerClient(ctx, account.AccessToken), nil
	case ProviderYouTube:
		if err := s.refresh.RefreshIfNeeded(ctx, account); err != nil {
			log.Printf("youtube token refresh for account %d failed, using stored token: %v", account.ID, err)
		}
		return bearerClient(ctx, account.AccessToken), nil
	}
	return nil, ErrUnknownProvider
}

func bearerClient(ctx context.Context, accessToken string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return oauth2.NewClient(ctx, src)
}
