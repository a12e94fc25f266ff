package linking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CodeHandshake runs the OAuth2 authorization-code flow for Facebook and
// YouTube. The exchange is performed directly over HTTP because the two
// providers answer with different payload shapes (Facebook still speaks the
// legacy form-encoded token response); both normalize into a TokenGrant.
type CodeHandshake struct {
	provider Provider
	cfg      Config

	httpClient *http.Client
}

func NewCodeHandshake(provider Provider, cfg Config) *CodeHandshake {
	return &CodeHandshake{
		provider: provider,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthorizeURL builds the provider authorize redirect target. No network
// call happens here. YouTube requests offline access so a refresh token is
// issued; Facebook only needs the redirect_uri.
func (h *CodeHandshake) AuthorizeURL() (string, error) {
	u, err := url.Parse(h.cfg.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid authorize URL for %s: %w", h.provider, err)
	}

	q := u.Query()
	q.Set("client_id", h.cfg.ClientID)
	q.Set("redirect_uri", h.cfg.CallbackURL)
	if h.provider == ProviderYouTube {
		q.Set("scope", YouTubeScope)
		q.Set("access_type", "offline")
		q.Set("approval_prompt", "force")
		q.Set("response_type", "code")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Exchange trades the callback code for an access token at the provider's
// token endpoint and parses the provider-specific payload into the
// canonical grant.
func (h *CodeHandshake) Exchange(ctx context.Context, code string) (TokenGrant, error) {
	form := url.Values{}
	form.Set("client_id", h.cfg.ClientID)
	form.Set("client_secret", h.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", h.cfg.CallbackURL)
	if h.provider == ProviderYouTube {
		form.Set("grant_type", "authorization_code")
	}

	body, err := h.postForm(ctx, "token exchange", h.cfg.AccessTokenURL, form)
	if err != nil {
		return TokenGrant{}, err
	}

	var grant TokenGrant
	switch h.provider {
	case ProviderFacebook:
		grant, err = ParseFacebookGrant(body)
	default:
		grant, err = ParseGoogleGrant(body)
	}
	if err != nil {
		return TokenGrant{}, upstreamErr(h.provider, "token exchange", err)
	}
	return grant, nil
}

// ParseFacebookGrant parses Facebook's form-encoded token response
// ("access_token=...&expires=<seconds>"). No refresh token is ever issued.
func ParseFacebookGrant(body []byte) (TokenGrant, error) {
	vals, err := url.ParseQuery(string(body))
	if err != nil {
		return TokenGrant{}, fmt.Errorf("malformed token response: %w", err)
	}
	accessToken := vals.Get("access_token")
	if accessToken == "" {
		return TokenGrant{}, fmt.Errorf("token response carries no access_token: %q", string(body))
	}

	grant := TokenGrant{AccessToken: accessToken}
	if expires := vals.Get("expires"); expires != "" {
		n, err := strconv.Atoi(expires)
		if err != nil {
			return TokenGrant{}, fmt.Errorf("malformed expires value %q: %w", expires, err)
		}
		grant.ExpiresIn = n
	}
	return grant, nil
}

// ParseGoogleGrant parses Google's JSON token response
// ({"access_token", "expires_in", "refresh_token"}).
func ParseGoogleGrant(body []byte) (TokenGrant, error) {
	var payload struct {
		AccessToken  string `json:"access_token"`
		ExpiresIn    int    `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return TokenGrant{}, fmt.Errorf("malformed token response: %w", err)
	}
	if payload.AccessToken == "" {
		return TokenGrant{}, fmt.Errorf("token response carries no access_token: %q", string(body))
	}
	return TokenGrant{
		AccessToken:  payload.AccessToken,
		ExpiresIn:    payload.ExpiresIn,
		RefreshToken: payload.RefreshToken,
	}, nil
}

// FetchIdentity resolves the provider-side identity of the freshly linked
// account. Facebook's `me` yields {id, username}; YouTube's userinfo yields
// {id, email} with the email serving as the display name.
func (h *CodeHandshake) FetchIdentity(ctx context.Context, accessToken string) (Identity, error) {
	var endpoint string
	switch h.provider {
	case ProviderFacebook:
		endpoint = strings.TrimRight(h.cfg.APIBaseURL, "/") + "/me"
	default:
		endpoint = h.cfg.UserInfoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Identity{}, upstreamErr(h.provider, "identity fetch", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Identity{}, upstreamErr(h.provider, "identity fetch", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Identity{}, upstreamErr(h.provider, "identity fetch",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body)))
	}

	switch h.provider {
	case ProviderFacebook:
		var me struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Name     string `json:"name"`
		}
		if err := json.Unmarshal(body, &me); err != nil {
			return Identity{}, upstreamErr(h.provider, "identity fetch", err)
		}
		if me.ID == "" {
			return Identity{}, upstreamErr(h.provider, "identity fetch",
				fmt.Errorf("response carries no user id"))
		}
		display := me.Username
		if display == "" {
			// Newer Graph versions dropped the username field
			display = me.Name
		}
		return Identity{ProviderAccountID: me.ID, DisplayName: display}, nil
	default:
		var userinfo struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		if err := json.Unmarshal(body, &userinfo); err != nil {
			return Identity{}, upstreamErr(h.provider, "identity fetch", err)
		}
		if userinfo.ID == "" {
			return Identity{}, upstreamErr(h.provider, "identity fetch",
				fmt.Errorf("response carries no user id"))
		}
		return Identity{ProviderAccountID: userinfo.ID, DisplayName: userinfo.Email}, nil
	}
}

func (h *CodeHandshake) postForm(ctx context.Context, op, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, upstreamErr(h.provider, op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, upstreamErr(h.provider, op, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamErr(h.provider, op,
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body)))
	}
	return body, nil
}
