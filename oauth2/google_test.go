package oauth2_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	authkit "github.com/icchy-san/authkit"
	googleauth "github.com/icchy-san/authkit/oauth2"
	"github.com/icchy-san/authkit/stores"
)

// newMockProvider stands in for the OAuth provider: a token endpoint that
// accepts any code and a userinfo endpoint returning the given profile.
func newMockProvider(t *testing.T, profile map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "mock-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer mock-access-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newGoogleStrategy(t *testing.T, store authkit.UserStore, profile map[string]any) *googleauth.GoogleStrategy {
	t.Helper()
	provider := newMockProvider(t, profile)
	return googleauth.NewGoogleStrategy("client-id", "client-secret", "http://localhost/api/auth/google/callback", store).
		WithEndpoints(provider.URL+"/auth", provider.URL+"/token", provider.URL+"/userinfo")
}

// startConsentPhase runs the first request and returns the state value the
// strategy committed to, both from the redirect URL and the cookie.
func startConsentPhase(t *testing.T, strategy *googleauth.GoogleStrategy) (state string, cookie *http.Cookie) {
	t.Helper()
	r := httptest.NewRequest("GET", "/auth/login", nil)
	w := httptest.NewRecorder()

	outcome, err := strategy.Authenticate(w, r, &authkit.Options{})
	if err != nil {
		t.Fatalf("consent phase failed: %v", err)
	}
	if !outcome.Pending {
		t.Fatal("consent phase should return a pending outcome")
	}
	if w.Code != http.StatusFound {
		t.Fatalf("got status %d, want 302", w.Code)
	}

	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad consent URL: %v", err)
	}
	state = loc.Query().Get("state")
	if state == "" {
		t.Fatal("consent URL carries no state")
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == "oauthstate" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no state cookie set")
	}
	if cookie.Value != state {
		t.Fatalf("cookie state %q does not match URL state %q", cookie.Value, state)
	}
	return state, cookie
}

func completeCallback(strategy *googleauth.GoogleStrategy, state string, cookie *http.Cookie) (*authkit.Outcome, error) {
	r := httptest.NewRequest("GET", "/api/auth/google/callback?code=mock-code&state="+url.QueryEscape(state), nil)
	r.AddCookie(cookie)
	return strategy.Authenticate(httptest.NewRecorder(), r, &authkit.Options{})
}

func TestGoogleConsentRedirect(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	strategy := newGoogleStrategy(t, store, map[string]any{
		"id": "g-1", "email": "alice@example.com", "name": "Alice",
	})
	startConsentPhase(t, strategy)
}

func TestGoogleCallbackCreatesUser(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	strategy := newGoogleStrategy(t, store, map[string]any{
		"id":      "g-1",
		"email":   "alice@example.com",
		"name":    "Alice",
		"picture": "https://img.example.com/alice.png",
	})

	state, cookie := startConsentPhase(t, strategy)
	outcome, err := completeCallback(strategy, state, cookie)
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}

	user, ok := outcome.Principal.(*authkit.User)
	if !ok {
		t.Fatalf("principal is %T, want *authkit.User", outcome.Principal)
	}
	if user.ID != "g-1" || user.Email != "alice@example.com" {
		t.Errorf("unexpected identity: %+v", user)
	}
	if outcome.Subject != "g-1" {
		t.Errorf("subject is %q, want g-1", outcome.Subject)
	}

	stored, err := store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil || stored == nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.Provider != authkit.ProviderGoogle {
		t.Errorf("got provider %q, want %q", stored.Provider, authkit.ProviderGoogle)
	}
	if stored.Password != "" {
		t.Error("provider accounts must carry no password")
	}
	if stored.Image != "https://img.example.com/alice.png" {
		t.Errorf("got image %q", stored.Image)
	}
}

func TestGoogleCallbackExistingUser(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	seeded := &authkit.User{
		ID:       "local-1",
		Name:     "Alice",
		Email:    "alice@example.com",
		Provider: authkit.ProviderGoogle,
	}
	if err := store.CreateUser(context.Background(), seeded); err != nil {
		t.Fatal(err)
	}

	strategy := newGoogleStrategy(t, store, map[string]any{
		"id": "g-other", "email": "alice@example.com", "name": "Alice",
	})

	state, cookie := startConsentPhase(t, strategy)
	outcome, err := completeCallback(strategy, state, cookie)
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if outcome.Subject != "local-1" {
		t.Errorf("existing account should be reused, got subject %q", outcome.Subject)
	}
}

func TestGoogleCallbackStateMismatch(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	strategy := newGoogleStrategy(t, store, map[string]any{
		"id": "g-1", "email": "alice@example.com", "name": "Alice",
	})

	_, cookie := startConsentPhase(t, strategy)
	_, err := completeCallback(strategy, "forged-state", cookie)
	if err == nil {
		t.Fatal("state mismatch should fail")
	}

	// A forged state is a protocol violation, not a credential failure.
	var authzErr *authkit.AuthorizationError
	if errors.As(err, &authzErr) {
		t.Error("state mismatch must not be an authorization failure")
	}
}

func TestGoogleCallbackMissingStateCookie(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	strategy := newGoogleStrategy(t, store, map[string]any{
		"id": "g-1", "email": "alice@example.com", "name": "Alice",
	})

	state, _ := startConsentPhase(t, strategy)
	r := httptest.NewRequest("GET", "/api/auth/google/callback?code=mock-code&state="+url.QueryEscape(state), nil)
	if _, err := strategy.Authenticate(httptest.NewRecorder(), r, &authkit.Options{}); err == nil {
		t.Fatal("callback without the state cookie should fail")
	}
}
