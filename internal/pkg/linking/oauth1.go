package linking

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrjones/oauth"
)

// TwitterHandshake runs the three-leg OAuth1 flow against Twitter:
// request token, user authorization redirect, access token exchange.
type TwitterHandshake struct {
	cfg Config
}

func NewTwitterHandshake(cfg Config) *TwitterHandshake {
	return &TwitterHandshake{cfg: cfg}
}

func (h *TwitterHandshake) consumer() *oauth.Consumer {
	return oauth.NewConsumer(h.cfg.ClientID, h.cfg.ClientSecret, oauth.ServiceProvider{
		RequestTokenUrl:   h.cfg.RequestTokenURL,
		AuthorizeTokenUrl: h.cfg.AuthorizeURL,
		AccessTokenUrl:    h.cfg.AccessTokenURL,
	})
}

// Begin obtains a request token and returns it together with its secret and
// the authorize URL the user must be redirected to. The secret has to
// survive the redirect round trip; callers persist it in an attempt store
// until the callback arrives.
func (h *TwitterHandshake) Begin() (requestToken, requestSecret, authorizeURL string, err error) {
	rt, loginURL, err := h.consumer().GetRequestTokenAndUrl(h.cfg.CallbackURL)
	if err != nil {
		return "", "", "", upstreamErr(ProviderTwitter, "request token", err)
	}
	return rt.Token, rt.Secret, loginURL, nil
}

type twitterCredentials struct {
	ID         int64  `json:"id"`
	ScreenName string `json:"screen_name"`
}

// Complete exchanges the authorized request token for a long lived access
// token pair and resolves the provider identity via verify_credentials.
func (h *TwitterHandshake) Complete(oauthToken, oauthVerifier, requestSecret string) (accessToken, accessSecret string, identity Identity, err error) {
	c := h.consumer()

	at, err := c.AuthorizeToken(&oauth.RequestToken{Token: oauthToken, Secret: requestSecret}, oauthVerifier)
	if err != nil {
		return "", "", Identity{}, upstreamErr(ProviderTwitter, "access token exchange", err)
	}

	endpoint := strings.TrimRight(h.cfg.APIBaseURL, "/") + "/account/verify_credentials.json"
	resp, err := c.Get(endpoint, nil, at)
	if err != nil {
		return "", "", Identity{}, upstreamErr(ProviderTwitter, "verify credentials", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", Identity{}, upstreamErr(ProviderTwitter, "verify credentials",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body)))
	}

	var creds twitterCredentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return "", "", Identity{}, upstreamErr(ProviderTwitter, "verify credentials", err)
	}
	if creds.ID == 0 {
		return "", "", Identity{}, upstreamErr(ProviderTwitter, "verify credentials",
			fmt.Errorf("response carries no user id"))
	}

	identity = Identity{
		ProviderAccountID: strconv.FormatInt(creds.ID, 10),
		DisplayName:       creds.ScreenName,
	}
	return at.Token, at.Secret, identity, nil
}
