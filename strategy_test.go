package authkit_test

import (
	"errors"
	"net/http"
	"testing"

	authkit "github.com/icchy-san/authkit"
)

// stubStrategy is a minimal Strategy for registry tests.
type stubStrategy struct {
	name string
}

func (s *stubStrategy) Name() string       { return s.name }
func (s *stubStrategy) SessionKey() string { return authkit.SessionKeyUser }
func (s *stubStrategy) ErrorKey() string   { return authkit.SessionErrorKey }
func (s *stubStrategy) Authenticate(w http.ResponseWriter, r *http.Request, opts *authkit.Options) (*authkit.Outcome, error) {
	return &authkit.Outcome{Principal: s.name, Subject: s.name}, nil
}

func TestRegistryRegister(t *testing.T) {
	reg := authkit.NewRegistry()
	if err := reg.Register(&stubStrategy{name: "user-pass"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := reg.Register(&stubStrategy{name: "user-pass"}); err == nil {
		t.Error("duplicate name should be rejected")
	}
	if err := reg.Register(&stubStrategy{}); err == nil {
		t.Error("empty name should be rejected")
	}

	s, err := reg.Get("user-pass")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if s.Name() != "user-pass" {
		t.Errorf("got strategy %q", s.Name())
	}
}

func TestRegistryDefault(t *testing.T) {
	reg := authkit.NewRegistry()
	if err := reg.SetDefault("user-pass"); err == nil {
		t.Error("defaulting to an unregistered strategy should fail")
	}

	// No default set: empty name cannot resolve.
	if _, err := reg.Get(""); err == nil {
		t.Error("empty name with no default should fail")
	}

	if err := reg.Register(&stubStrategy{name: "user-pass"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := reg.SetDefault("user-pass"); err != nil {
		t.Fatalf("set default failed: %v", err)
	}

	s, err := reg.Get("")
	if err != nil {
		t.Fatalf("get default failed: %v", err)
	}
	if s.Name() != "user-pass" {
		t.Errorf("default resolved to %q", s.Name())
	}
}

func TestRegistryUnknownStrategy(t *testing.T) {
	reg := authkit.NewRegistry()
	_, err := reg.Get("nope")
	var cfgErr *authkit.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
}
