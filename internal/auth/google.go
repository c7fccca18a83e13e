package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Identity is what the identity provider tells us about a signed-in user.
// DisplayName is transient; only Subject is ever persisted.
type Identity struct {
	Subject     string
	DisplayName string
}

// GoogleService builds Google OAuth2 clients from the configured credentials.
type GoogleService struct {
	clientID     string
	clientSecret string
}

// NewGoogleService creates a new Google sign-in helper.
func NewGoogleService(clientID, clientSecret string) *GoogleService {
	return &GoogleService{clientID: clientID, clientSecret: clientSecret}
}

// Enabled reports whether Google sign-in is configured.
func (g *GoogleService) Enabled() bool {
	return g.clientID != "" && g.clientSecret != ""
}

// OAuthConfig returns an OAuth config with the provided redirect URL.
func (g *GoogleService) OAuthConfig(redirectURL string) (*oauth2.Config, error) {
	if !g.Enabled() {
		return nil, fmt.Errorf("google oauth client id/secret not configured")
	}

	return &oauth2.Config{
		ClientID:     g.clientID,
		ClientSecret: g.clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", googleoauth.UserinfoProfileScope},
	}, nil
}

// FetchIdentity exchanges nothing further; it asks Google who the token
// belongs to and returns the stable subject id plus a display name.
func (g *GoogleService) FetchIdentity(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*Identity, error) {
	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	if info.Id == "" {
		return nil, fmt.Errorf("identity provider returned no subject id")
	}

	name := info.Name
	if name == "" {
		name = info.GivenName
	}

	return &Identity{Subject: info.Id, DisplayName: name}, nil
}
