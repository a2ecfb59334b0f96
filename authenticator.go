package authkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Authenticator runs a named Strategy and manages the session write and
// redirect outcomes. One instance serves the whole process; it holds no
// per-request state.
type Authenticator struct {
	Session  *scs.SessionManager
	Registry *Registry

	// SessionSecret signs the auth-token cookie set alongside the session.
	SessionSecret string

	// JwtIssuer is the iss claim on the auth-token cookie.
	JwtIssuer string

	// AuthTokenCookieName defaults to "authToken".
	AuthTokenCookieName string

	// SessionTimeout bounds both the session and the auth-token cookie.
	// Defaults to one day.
	SessionTimeout time.Duration
}

func NewAuthenticator(session *scs.SessionManager, registry *Registry, secret string) *Authenticator {
	out := &Authenticator{Session: session, Registry: registry, SessionSecret: secret}
	return out.EnsureDefaults()
}

func (a *Authenticator) EnsureDefaults() *Authenticator {
	if a.SessionTimeout <= 0 {
		a.SessionTimeout = 24 * time.Hour
	}
	if a.JwtIssuer == "" {
		a.JwtIssuer = "authkit"
	}
	if a.AuthTokenCookieName == "" {
		a.AuthTokenCookieName = "authToken"
	}
	return a
}

// Authenticate resolves the named strategy and runs it.
//
// On success the identity payload is written under the strategy's session
// key, a signed auth-token cookie is set, and the user agent is redirected
// to opts.SuccessRedirect when one is given (otherwise the outcome is
// returned). On an AuthorizationError the failure message goes under the
// strategy's error key and the user agent is redirected to
// opts.FailureRedirect when given (otherwise the error is returned). An
// unregistered name is a ConfigurationError, and any other error — a store
// or transport failure inside the strategy — propagates unclassified.
//
// When a redirect was written the returned outcome is nil.
func (a *Authenticator) Authenticate(name string, w http.ResponseWriter, r *http.Request, opts *Options) (*Outcome, error) {
	strategy, err := a.Registry.Get(name)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}

	outcome, err := strategy.Authenticate(w, r, opts)
	if err != nil {
		var authErr *AuthorizationError
		if errors.As(err, &authErr) {
			slog.Info("authentication failed", "strategy", strategy.Name())
			a.Session.Put(r.Context(), strategy.ErrorKey(), authErr.Message)
			if opts.FailureRedirect != "" {
				http.Redirect(w, r, opts.FailureRedirect, http.StatusFound)
				return nil, nil
			}
		}
		return nil, err
	}
	if outcome.Pending {
		// The strategy already redirected to the external provider.
		return outcome, nil
	}

	payload, err := json.Marshal(outcome.Principal)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize identity: %w", err)
	}
	ctx := r.Context()
	a.Session.Put(ctx, strategy.SessionKey(), string(payload))
	a.Session.Remove(ctx, strategy.ErrorKey())
	a.setAuthTokenCookie(w, outcome.Subject)
	slog.Info("user authenticated", "strategy", strategy.Name())

	if opts.SuccessRedirect != "" {
		http.Redirect(w, r, opts.SuccessRedirect, http.StatusFound)
		return nil, nil
	}
	return outcome, nil
}

// IsAuthenticated reads the current identity from the session. Present →
// redirect to opts.SuccessRedirect when given, else return the identity.
// Absent → redirect to opts.FailureRedirect when given, else (nil, nil).
// The read never mutates session state.
func (a *Authenticator) IsAuthenticated(w http.ResponseWriter, r *http.Request, opts *Options) (*User, error) {
	if opts == nil {
		opts = &Options{}
	}
	raw := a.Session.GetString(r.Context(), SessionKeyUser)
	if raw == "" {
		if opts.FailureRedirect != "" {
			http.Redirect(w, r, opts.FailureRedirect, http.StatusFound)
		}
		return nil, nil
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("corrupt session payload: %w", err)
	}
	if opts.SuccessRedirect != "" {
		http.Redirect(w, r, opts.SuccessRedirect, http.StatusFound)
		return nil, nil
	}
	return &user, nil
}

// Logout clears the session and the auth-token cookie, then redirects.
func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request, redirectTo string) error {
	if err := a.Session.Destroy(r.Context()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:    a.AuthTokenCookieName,
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Now(),
	})
	slog.Info("user logged out")
	http.Redirect(w, r, redirectTo, http.StatusFound)
	return nil
}

func (a *Authenticator) setAuthTokenCookie(w http.ResponseWriter, subject string) {
	if subject == "" || a.SessionSecret == "" {
		return
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iss": a.JwtIssuer,
		"iat": now.Unix(),
		"exp": now.Add(a.SessionTimeout).Unix(),
	})
	signed, err := token.SignedString([]byte(a.SessionSecret))
	if err != nil {
		slog.Warn("error signing auth token", "err", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.AuthTokenCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Expires:  now.Add(a.SessionTimeout),
		MaxAge:   int(a.SessionTimeout / time.Second),
	})
}

// VerifyAuthToken parses and verifies a signed auth-token cookie value and
// returns the subject it was issued for.
func (a *Authenticator) VerifyAuthToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(a.SessionSecret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("claims is not a map")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("subject not found")
	}
	return sub, nil
}
