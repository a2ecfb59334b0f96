package authkit

import (
	"net/http"
	"net/url"
)

// Session keys shared by the local and Google strategies. Strategies that
// carry a foreign session payload (see the supabase package) declare their
// own keys so concurrent session types never overwrite each other.
const (
	SessionKeyUser  = "user"
	SessionErrorKey = "auth:error"
)

// Options carries per-call authentication options.
type Options struct {
	// SuccessRedirect, when set, is where the Authenticator sends the user
	// agent after the identity has been written to the session.
	SuccessRedirect string

	// FailureRedirect, when set, is where an AuthorizationError sends the
	// user agent. When empty the error is returned to the caller instead.
	FailureRedirect string

	// Form is a pre-parsed form body. Request bodies are single-read, so a
	// handler that has already inspected the form passes it along here
	// rather than having the strategy re-read the body.
	Form url.Values
}

// Outcome is the explicit result of a successful strategy run.
type Outcome struct {
	// Pending is true when the strategy already wrote its own response,
	// e.g. the consent-URL redirect of an OAuth strategy's first phase.
	// No session state is written for a pending outcome.
	Pending bool

	// Principal is the JSON-serializable identity payload to persist under
	// the strategy's session key.
	Principal any

	// Subject identifies the principal in the signed auth-token cookie.
	Subject string
}

// Strategy is a pluggable credential-verification unit identified by name.
//
// Authenticate either returns an Outcome or fails. Credential-verification
// failures must be *AuthorizationError; missing-field failures are
// *AuthError; anything else (transport, store) propagates as-is and is
// never downgraded to an authorization failure.
type Strategy interface {
	Name() string
	SessionKey() string
	ErrorKey() string
	Authenticate(w http.ResponseWriter, r *http.Request, opts *Options) (*Outcome, error)
}

// Registry maps strategy names to strategies. It is constructed once at
// process start, passed by reference into request handlers, and read-only
// after registration completes. Never accessed through a package global.
type Registry struct {
	strategies  map[string]Strategy
	defaultName string
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a strategy under its own name. Empty and duplicate names
// are rejected here, at startup, rather than surfacing at request time.
func (g *Registry) Register(s Strategy) error {
	name := s.Name()
	if name == "" {
		return NewConfigurationError("strategy has no name")
	}
	if _, ok := g.strategies[name]; ok {
		return NewConfigurationError("strategy %q already registered", name)
	}
	g.strategies[name] = s
	return nil
}

// SetDefault marks the strategy used when no name is supplied. At most one
// strategy can be the default.
func (g *Registry) SetDefault(name string) error {
	if _, ok := g.strategies[name]; !ok {
		return NewConfigurationError("cannot default to unregistered strategy %q", name)
	}
	g.defaultName = name
	return nil
}

// Get resolves a strategy by name, or the default when name is empty.
func (g *Registry) Get(name string) (Strategy, error) {
	if name == "" {
		name = g.defaultName
	}
	s, ok := g.strategies[name]
	if !ok {
		return nil, NewConfigurationError("no strategy registered as %q", name)
	}
	return s, nil
}
