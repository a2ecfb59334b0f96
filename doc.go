// Package authkit implements the authentication core of a web application:
// local email/password login, Google OAuth login, and a Supabase-backed
// federated login, composed behind a single Authenticator.
//
// # Architecture
//
// Strategy: a named credential-verification unit. Each strategy turns raw
// request credentials (or an external provider's callback payload) into a
// verified identity, or fails with an AuthorizationError. Strategies also
// declare the session key their identity payload lives under, so different
// credential types never overwrite each other inside one browser session.
//
// Registry: an explicit mapping from strategy name to strategy, built once
// at process start and read-only afterwards. Unknown or duplicate names are
// rejected at registration time, not at request time.
//
// Authenticator: the orchestrator. It resolves the named strategy, runs it,
// and on success persists the identity into the session manager and issues
// a redirect; on an AuthorizationError it records the failure message under
// the strategy's error key and redirects to the configured failure
// location. Every other error propagates untouched.
//
// # Basic Usage
//
// Build the registry and authenticator at startup:
//
//	store := stores.NewFSUserStore("/path/to/storage")
//	hasher := &authkit.PasswordHasher{Cost: 12}
//
//	registry := authkit.NewRegistry()
//	registry.Register(&authkit.PasswordStrategy{Store: store, Hasher: hasher})
//	registry.SetDefault("user-pass")
//
//	session := scs.New()
//	auth := authkit.NewAuthenticator(session, registry, sessionSecret)
//
// Then dispatch form submissions through the action handlers:
//
//	handlers := &authkit.Handlers{
//	    Auth:   auth,
//	    Signup: &authkit.SignupService{Store: store, Hasher: hasher},
//	}
//	http.ListenAndServe(addr, session.LoadAndSave(handlers.Routes()))
//
// # Store Implementations
//
// The stores package provides a file-based UserStore suitable for
// development and tests, and stores/gorm provides a GORM-backed store whose
// unique email index settles concurrent signup races at the database.
//
// # Security
//
// Passwords are hashed with bcrypt (cost 12 by default) and the hash never
// leaves the store layer: strategies return identities with the password
// field stripped before anything reaches the session. Login failures do not
// reveal whether the email exists or only the password was wrong.
package authkit
