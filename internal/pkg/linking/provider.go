package linking

import (
	"fmt"
	"strings"

	"github.com/ManuelReschke/LinkFox/internal/pkg/env"
)

// Provider identifies one of the supported external account providers.
// The set is closed; each provider has its own handshake contract.
type Provider string

const (
	ProviderTwitter  Provider = "twitter"
	ProviderFacebook Provider = "facebook"
	ProviderYouTube  Provider = "youtube"
)

// ParseProvider maps a route/user supplied provider name onto the closed set.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderTwitter:
		return ProviderTwitter, nil
	case ProviderFacebook:
		return ProviderFacebook, nil
	case ProviderYouTube:
		return ProviderYouTube, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

const (
	defaultTwitterRequestTokenURL = "https://api.twitter.com/oauth/request_token"
	defaultTwitterAuthorizeURL    = "https://api.twitter.com/oauth/authorize"
	defaultTwitterAccessTokenURL  = "https://api.twitter.com/oauth/access_token"
	defaultTwitterAPIBaseURL      = "https://api.twitter.com/1.1/"

	defaultFacebookAuthorizeURL   = "https://www.facebook.com/dialog/oauth"
	defaultFacebookAccessTokenURL = "https://graph.facebook.com/oauth/access_token"
	defaultFacebookAPIBaseURL     = "https://graph.facebook.com/"

	defaultYouTubeAuthorizeURL   = "https://accounts.google.com/o/oauth2/auth"
	defaultYouTubeAccessTokenURL = "https://accounts.google.com/o/oauth2/token"
	defaultYouTubeAPIBaseURL     = "https://www.googleapis.com/youtube/v3/"
	defaultYouTubeUserInfoURL    = "https://www.googleapis.com/oauth2/v1/userinfo"
)

// YouTubeScope is the space separated scope set requested for offline
// YouTube access plus the userinfo endpoints used for identity resolution.
const YouTubeScope = "https://www.googleapis.com/auth/youtube" +
	" https://www.googleapis.com/auth/userinfo.profile" +
	" https://www.googleapis.com/auth/userinfo.email"

// Config is the immutable endpoint and credential descriptor for one provider.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	AuthorizeURL    string
	AccessTokenURL  string
	RequestTokenURL string // OAuth1 providers only
	APIBaseURL      string
	UserInfoURL     string // identity endpoint outside the API base, if any
}

// Registry holds the per-provider configuration. Populated once at process
// start; read-only afterwards.
type Registry struct {
	configs map[Provider]Config
}

func NewRegistry(configs map[Provider]Config) *Registry {
	m := make(map[Provider]Config, len(configs))
	for p, cfg := range configs {
		m[p] = cfg
	}
	return &Registry{configs: m}
}

// NewRegistryFromEnv builds the registry from environment variables.
// Endpoint URLs default to the real provider endpoints and can be
// overridden, which tests use to point at local stubs.
func NewRegistryFromEnv() *Registry {
	return NewRegistry(map[Provider]Config{
		ProviderTwitter: {
			ClientID:        strings.TrimSpace(env.GetEnv("TWITTER_KEY", "")),
			ClientSecret:    strings.TrimSpace(env.GetEnv("TWITTER_SECRET", "")),
			CallbackURL:     strings.TrimSpace(env.GetEnv("TWITTER_CALLBACK_URL", "")),
			RequestTokenURL: env.GetEnv("TWITTER_REQUEST_TOKEN_URL", defaultTwitterRequestTokenURL),
			AuthorizeURL:    env.GetEnv("TWITTER_AUTHORIZE_URL", defaultTwitterAuthorizeURL),
			AccessTokenURL:  env.GetEnv("TWITTER_ACCESS_TOKEN_URL", defaultTwitterAccessTokenURL),
			APIBaseURL:      env.GetEnv("TWITTER_API_BASE_URL", defaultTwitterAPIBaseURL),
		},
		ProviderFacebook: {
			ClientID:       strings.TrimSpace(env.GetEnv("FACEBOOK_APP_ID", "")),
			ClientSecret:   strings.TrimSpace(env.GetEnv("FACEBOOK_APP_SECRET", "")),
			CallbackURL:    strings.TrimSpace(env.GetEnv("FACEBOOK_CALLBACK_URL", "")),
			AuthorizeURL:   env.GetEnv("FACEBOOK_AUTHORIZE_URL", defaultFacebookAuthorizeURL),
			AccessTokenURL: env.GetEnv("FACEBOOK_ACCESS_TOKEN_URL", defaultFacebookAccessTokenURL),
			APIBaseURL:     env.GetEnv("FACEBOOK_API_BASE_URL", defaultFacebookAPIBaseURL),
		},
		ProviderYouTube: {
			ClientID:       strings.TrimSpace(env.GetEnv("YOUTUBE_CLIENT_ID", "")),
			ClientSecret:   strings.TrimSpace(env.GetEnv("YOUTUBE_CLIENT_SECRET", "")),
			CallbackURL:    strings.TrimSpace(env.GetEnv("YOUTUBE_CALLBACK_URL", "")),
			AuthorizeURL:   env.GetEnv("YOUTUBE_AUTHORIZE_URL", defaultYouTubeAuthorizeURL),
			AccessTokenURL: env.GetEnv("YOUTUBE_ACCESS_TOKEN_URL", defaultYouTubeAccessTokenURL),
			APIBaseURL:     env.GetEnv("YOUTUBE_API_BASE_URL", defaultYouTubeAPIBaseURL),
			UserInfoURL:    env.GetEnv("YOUTUBE_USERINFO_URL", defaultYouTubeUserInfoURL),
		},
	})
}

// Config returns the descriptor for the given provider.
func (r *Registry) Config(p Provider) (Config, bool) {
	cfg, ok := r.configs[p]
	return cfg, ok
}
