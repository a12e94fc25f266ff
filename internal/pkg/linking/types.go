package linking

// TokenGrant is the canonical result of an access-token exchange. Provider
// payload shapes differ (form encoded vs JSON, "expires" vs "expires_in");
// they all normalize into this struct.
type TokenGrant struct {
	AccessToken  string
	ExpiresIn    int // seconds; 0 means the provider reported no expiry
	RefreshToken string
}

// Identity is the provider-side identity of the linked account at link time.
type Identity struct {
	ProviderAccountID string
	DisplayName       string
}

// CallbackParams carries the provider supplied callback query parameters.
// OAuthToken/OAuthVerifier are the OAuth1 pair, Code the OAuth2 one.
type CallbackParams struct {
	OAuthToken    string
	OAuthVerifier string
	Code          string
}

// BeginLinkResult is what the presentation layer needs to send the user to
// the provider. AttemptKey is only set for OAuth1 providers and must be kept
// in the user's linking session until the callback arrives.
type BeginLinkResult struct {
	RedirectURL string
	AttemptKey  string
}
