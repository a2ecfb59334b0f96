// Package oauth2 provides the Google OAuth strategy: a two-phase flow that
// first redirects the user agent to the provider's consent URL and then, on
// the provider's callback, exchanges the authorization code for a profile
// and maps it onto a local user.
//
// There is deliberately no authorization-failure path on the callback:
// a profile email with no local match is an implicit signup, not an error.
// First-time OAuth logins therefore create a local account silently.
package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	authkit "github.com/icchy-san/authkit"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// googleProfile is the subset of the userinfo payload we map onto a user.
type googleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleStrategy implements the "google" strategy over the user store.
type GoogleStrategy struct {
	Store       authkit.UserStore
	config      oauth2.Config
	userInfoURL string
}

// NewGoogleStrategy builds the strategy. Empty arguments fall back to the
// GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET / OAUTH2_GOOGLE_CALLBACK_URL
// environment variables.
func NewGoogleStrategy(clientID, clientSecret, callbackURL string, store authkit.UserStore) *GoogleStrategy {
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if callbackURL == "" {
		callbackURL = os.Getenv("OAUTH2_GOOGLE_CALLBACK_URL")
	}
	return &GoogleStrategy{
		Store: store,
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// WithEndpoints overrides the provider endpoints. Used by tests to point the
// strategy at a mock provider.
func (g *GoogleStrategy) WithEndpoints(authURL, tokenURL, userInfoURL string) *GoogleStrategy {
	g.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	g.userInfoURL = userInfoURL
	return g
}

func (g *GoogleStrategy) Name() string       { return "google" }
func (g *GoogleStrategy) SessionKey() string { return authkit.SessionKeyUser }
func (g *GoogleStrategy) ErrorKey() string   { return authkit.SessionErrorKey }

// Authenticate runs whichever phase the request is in. Without a provider
// callback it writes the consent-URL redirect and returns a pending
// outcome; with one it exchanges the code, fetches the profile and returns
// the matching local user, creating one on first login.
func (g *GoogleStrategy) Authenticate(w http.ResponseWriter, r *http.Request, opts *authkit.Options) (*authkit.Outcome, error) {
	code := r.URL.Query().Get("code")
	if code == "" {
		state := generateStateOauthCookie(w)
		http.Redirect(w, r, g.config.AuthCodeURL(state), http.StatusFound)
		return &authkit.Outcome{Pending: true}, nil
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || stateCookie.Value == "" {
		return nil, fmt.Errorf("missing oauth state cookie")
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		clearStateOauthCookie(w)
		return nil, fmt.Errorf("oauth state mismatch")
	}
	clearStateOauthCookie(w)

	token, err := g.config.Exchange(r.Context(), code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	profile, err := g.fetchProfile(r.Context(), token)
	if err != nil {
		return nil, err
	}

	user, err := g.Store.GetUserByEmail(r.Context(), profile.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		user, err = g.createUser(r.Context(), profile)
		if err != nil {
			return nil, err
		}
	}

	return &authkit.Outcome{Principal: user.Sanitized(), Subject: user.ID}, nil
}

func (g *GoogleStrategy) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading user info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request returned %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed parsing user info: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("provider returned no email")
	}
	return &profile, nil
}

func (g *GoogleStrategy) createUser(ctx context.Context, profile *googleProfile) (*authkit.User, error) {
	id := profile.ID
	if id == "" {
		id = uuid.NewString()
	}
	user := &authkit.User{
		ID:       id,
		Name:     profile.Name,
		Email:    profile.Email,
		Password: "",
		Image:    profile.Picture,
		Provider: authkit.ProviderGoogle,
	}
	if err := g.Store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
