package authkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Form action discriminator values recognized by the auth pages. Anything
// else is a no-op, never an error.
const (
	ActionSignIn         = "Sign In"
	ActionSignInGoogle   = "Sign In Google"
	ActionSignInSupabase = "Sign In Supabase"
	ActionSignUp         = "Sign Up"
	ActionSignUpSupabase = "Sign Up Supabase"
	ActionLogout         = "logout"
)

// FederatedRegistrar registers an account with the external identity
// service before the local row is created. Implemented by supabase.Client.
type FederatedRegistrar interface {
	SignUp(ctx context.Context, name, email, password string) error
}

// Handlers dispatches auth form submissions to the Authenticator and the
// SignupService. Page markup is the caller's problem; these handlers only
// implement the action contract: an _action discriminator plus raw
// credential fields in, a redirect or a small JSON body out.
type Handlers struct {
	Auth      *Authenticator
	Signup    *SignupService
	Federated FederatedRegistrar
}

// Routes wires the handlers onto a router. The caller wraps the result in
// the session manager's LoadAndSave middleware.
func (h *Handlers) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/", h.IndexAction).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.LoginPage).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", h.LoginAction).Methods(http.MethodPost)
	r.HandleFunc("/auth/signup", h.SignupPage).Methods(http.MethodGet)
	r.HandleFunc("/auth/signup", h.SignupAction).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/google/callback", h.GoogleCallback).Methods(http.MethodGet)
	return r
}

// Index returns the logged-in identity, or redirects to the login page.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.IsAuthenticated(w, r, &Options{FailureRedirect: "/auth/login"})
	if err != nil {
		h.serverError(w, err)
		return
	}
	if user == nil {
		return // redirected
	}
	writeJSON(w, http.StatusOK, user)
}

// IndexAction handles the logout submission from the index page.
func (h *Handlers) IndexAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, "Invalid Form Data", "")
		return
	}
	switch r.PostForm.Get("action") {
	case ActionLogout:
		if err := h.Auth.Logout(w, r, "/auth/login"); err != nil {
			h.serverError(w, err)
		}
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// LoginPage redirects already-authenticated users away from the login page.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Auth.IsAuthenticated(w, r, &Options{SuccessRedirect: "/"}); err != nil {
		h.serverError(w, err)
	}
}

// LoginAction dispatches the login form's _action discriminator.
func (h *Handlers) LoginAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, "Invalid Form Data", "")
		return
	}
	action := r.PostForm.Get("_action")
	opts := &Options{SuccessRedirect: "/", FailureRedirect: "/auth/login", Form: r.PostForm}

	switch action {
	case ActionSignIn:
		h.runStrategy(w, r, "user-pass", opts, action)
	case ActionSignInGoogle:
		h.runStrategy(w, r, "google", &Options{Form: r.PostForm}, action)
	case ActionSignInSupabase:
		h.runStrategy(w, r, "supabase", opts, action)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// SignupPage redirects already-authenticated users away from the signup page.
func (h *Handlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Auth.IsAuthenticated(w, r, &Options{SuccessRedirect: "/"}); err != nil {
		h.serverError(w, err)
	}
}

// SignupAction dispatches the signup form's _action discriminator.
func (h *Handlers) SignupAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, "Invalid Form Data", "")
		return
	}
	action := r.PostForm.Get("_action")

	switch action {
	case ActionSignUp:
		h.handleLocalSignup(w, r, action)
	case ActionSignInGoogle:
		h.runStrategy(w, r, "google", &Options{Form: r.PostForm}, action)
	case ActionSignUpSupabase:
		h.handleSupabaseSignup(w, r, action)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// GoogleCallback completes the OAuth flow the consent redirect started.
func (h *Handlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	h.runStrategy(w, r, "google", &Options{
		SuccessRedirect: "/",
		FailureRedirect: "/auth/login",
	}, "")
}

func (h *Handlers) handleLocalSignup(w http.ResponseWriter, r *http.Request, action string) {
	name := r.PostForm.Get("name")
	email := r.PostForm.Get("email")
	password := r.PostForm.Get("password")
	if name == "" || email == "" || password == "" {
		h.badRequest(w, "Invalid Form Data", action)
		return
	}

	result, err := h.Signup.CreateUser(r.Context(), SignupInput{
		Name:     name,
		Email:    email,
		Password: password,
		Provider: ProviderLocal,
	})
	if err != nil {
		h.actionError(w, err, action)
		return
	}
	if result.Error != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"errors": map[string]string{"email": result.Error.Message},
		})
		return
	}

	// Account created; log them straight in with the same form.
	h.runStrategy(w, r, "user-pass", &Options{
		SuccessRedirect: "/",
		FailureRedirect: "/auth/signup",
		Form:            r.PostForm,
	}, action)
}

func (h *Handlers) handleSupabaseSignup(w http.ResponseWriter, r *http.Request, action string) {
	if h.Federated == nil {
		h.serverError(w, NewConfigurationError("federated signup not configured"))
		return
	}
	name := r.PostForm.Get("name")
	email := r.PostForm.Get("email")
	password := r.PostForm.Get("password")
	if name == "" || email == "" || password == "" {
		h.badRequest(w, "Invalid Form Data", action)
		return
	}

	if err := h.Federated.SignUp(r.Context(), name, email, password); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"error": err.Error()})
		return
	}

	result, err := h.Signup.CreateUser(r.Context(), SignupInput{
		Name:     name,
		Email:    email,
		Password: password,
		Provider: ProviderSupabase,
	})
	if err != nil {
		h.actionError(w, err, action)
		return
	}
	if result.Error != nil {
		writeJSON(w, http.StatusOK, map[string]any{"error": result.Error.Message})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) runStrategy(w http.ResponseWriter, r *http.Request, name string, opts *Options, action string) {
	if _, err := h.Auth.Authenticate(name, w, r, opts); err != nil {
		h.actionError(w, err, action)
	}
}

// actionError is the outermost error boundary for an action: validation
// failures become a structured 400, everything else a generic 500.
func (h *Handlers) actionError(w http.ResponseWriter, err error, action string) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": authErr.Message,
			"code":  authErr.Code,
			"field": authErr.Field,
			"form":  action,
		})
		return
	}
	h.serverError(w, err)
}

func (h *Handlers) badRequest(w http.ResponseWriter, message, action string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": message, "form": action})
}

func (h *Handlers) serverError(w http.ResponseWriter, err error) {
	http.Error(w, fmt.Sprintf("An error occurred: %s", err), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
