package supabase

import (
	"errors"
	"net/http"

	authkit "github.com/icchy-san/authkit"
)

// Session keys for the federated session payload. Distinct from the local
// strategies' keys so both session types can coexist in one browser
// session.
const (
	SessionKey = "sb:session"
	ErrorKey   = "sb:error"
)

// Strategy delegates verification to the identity service and returns its
// raw session payload as the authenticated principal. Registered as
// "supabase".
type Strategy struct {
	Client *Client
}

func (s *Strategy) Name() string       { return "supabase" }
func (s *Strategy) SessionKey() string { return SessionKey }
func (s *Strategy) ErrorKey() string   { return ErrorKey }

// Authenticate submits the form credentials to the service's sign-in API.
// A service-reported rejection, a network failure, or a response with no
// session all fail as an AuthorizationError carrying the service's message
// when it gave one.
func (s *Strategy) Authenticate(w http.ResponseWriter, r *http.Request, opts *authkit.Options) (*authkit.Outcome, error) {
	form := opts.Form
	if form == nil {
		if err := r.ParseForm(); err != nil {
			return nil, authkit.NewAuthError(authkit.ErrCodeParseError, "Error parsing form", "")
		}
		form = r.Form
	}

	email := form.Get("email")
	password := form.Get("password")
	if email == "" {
		return nil, authkit.NewAuthError(authkit.ErrCodeMissingField, "Invalid Request", "email")
	}
	if password == "" {
		return nil, authkit.NewAuthError(authkit.ErrCodeMissingField, "Invalid Request", "password")
	}

	session, err := s.Client.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &authkit.AuthorizationError{Message: apiErr.Message}
		}
		return nil, &authkit.AuthorizationError{}
	}

	subject, _ := session.User["id"].(string)
	return &authkit.Outcome{Principal: session, Subject: subject}, nil
}
