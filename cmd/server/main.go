// Command server runs the authentication service: config is loaded
// fail-fast from the environment, the strategy registry is built once, and
// the HTTP action routes are served behind the session middleware.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/alexedwards/scs/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	authkit "github.com/icchy-san/authkit"
	googleauth "github.com/icchy-san/authkit/oauth2"
	gormstore "github.com/icchy-san/authkit/stores/gorm"
	"github.com/icchy-san/authkit/supabase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := authkit.LoadConfig()
	if err != nil {
		return err
	}

	// One pool for the process lifetime, reused across requests.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		return err
	}
	store := gormstore.NewUserStore(db)

	session := scs.New()
	session.Lifetime = cfg.SessionLifetime
	session.Cookie.HttpOnly = true

	hasher := &authkit.PasswordHasher{Cost: cfg.BcryptCost}

	sb, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	if err != nil {
		return err
	}

	registry := authkit.NewRegistry()
	if err := registry.Register(&authkit.PasswordStrategy{Store: store, Hasher: hasher}); err != nil {
		return err
	}
	if err := registry.Register(googleauth.NewGoogleStrategy(
		cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL(), store)); err != nil {
		return err
	}
	if err := registry.Register(&supabase.Strategy{Client: sb}); err != nil {
		return err
	}
	if err := registry.SetDefault("user-pass"); err != nil {
		return err
	}

	auth := authkit.NewAuthenticator(session, registry, cfg.SessionSecret)
	auth.SessionTimeout = cfg.SessionLifetime

	handlers := &authkit.Handlers{
		Auth:      auth,
		Signup:    &authkit.SignupService{Store: store, Hasher: hasher},
		Federated: sb,
	}

	slog.Info("listening", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, session.LoadAndSave(handlers.Routes()))
}
