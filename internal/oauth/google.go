// Package oauth implements the third-party sign-in used to identify
// customers and the admin.  Only the verified email address and display
// name are taken from the provider.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// GoogleUserInfoURL is the OpenID Connect userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var (
	// ErrNotConfigured is returned when no client credentials are set.
	ErrNotConfigured = errors.New("oauth provider not configured")
	// ErrEmailNotVerified is returned when the provider has not verified
	// the account's email address.
	ErrEmailNotVerified = errors.New("email address not verified")
)

// Identity is the signed-in person as reported by the provider.
type Identity struct {
	Email string
	Name  string
}

// Provider is the sign-in flow seen by the auth handler.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// Google signs users in with their Google account.
type Google struct {
	Config      *oauth2.Config
	UserInfoURL string
}

// NewGoogle builds the provider from client credentials.  The returned
// provider reports ErrNotConfigured from Exchange when clientID is empty.
func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: GoogleUserInfoURL,
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *Google) AuthCodeURL(state string) string {
	return g.Config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type userInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Exchange trades the authorization code for a token and loads the
// account's email and name.
func (g *Google) Exchange(ctx context.Context, code string) (*Identity, error) {
	if g.Config.ClientID == "" {
		return nil, ErrNotConfigured
	}
	tok, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" || !info.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	name := strings.TrimSpace(info.Name)
	if name == "" {
		name = email[:strings.IndexByte(email+"@", '@')]
	}
	return &Identity{Email: email, Name: name}, nil
}
