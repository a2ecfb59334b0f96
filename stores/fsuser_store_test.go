package stores_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	authkit "github.com/icchy-san/authkit"
	"github.com/icchy-san/authkit/stores"
)

func testUser(email string) *authkit.User {
	return &authkit.User{
		ID:       "user-" + email,
		Name:     "Test User",
		Email:    email,
		Password: "$2a$04$notarealhashbutirrelevanthere",
		Provider: authkit.ProviderLocal,
	}
}

func TestFSUserStoreCreateAndGet(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	ctx := context.Background()

	user := testUser("alice@example.com")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("user not found after create")
	}
	if got.ID != user.ID || got.Email != user.Email || got.Password != user.Password {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestFSUserStoreUnknownEmail(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())

	got, err := store.GetUserByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("unknown email should not be an error, got: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil user, got %+v", got)
	}
}

func TestFSUserStoreDuplicateEmail(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	ctx := context.Background()

	if err := store.CreateUser(ctx, testUser("alice@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	other := testUser("alice@example.com")
	other.ID = "someone-else"
	err := store.CreateUser(ctx, other)
	if !errors.Is(err, authkit.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got: %v", err)
	}

	// The original row is untouched.
	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || got == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.ID != "user-alice@example.com" {
		t.Errorf("first writer should win, got %q", got.ID)
	}
}

// Concurrent creates for one email must resolve to exactly one winner.
func TestFSUserStoreCreateRace(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	ctx := context.Background()

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.CreateUser(ctx, testUser("race@example.com"))
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, authkit.ErrDuplicateEmail):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("%d writers succeeded, want exactly 1", won)
	}
}

func TestFSUserStoreSaveUser(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	ctx := context.Background()

	user := testUser("alice@example.com")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	user.Name = "Alice Renamed"
	user.Image = "https://img.example.com/alice.png"
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || got == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.Name != "Alice Renamed" || got.Image != "https://img.example.com/alice.png" {
		t.Errorf("update not persisted: %+v", got)
	}
}

// Email matching is exact, case included.
func TestFSUserStoreCaseSensitiveEmail(t *testing.T) {
	store := stores.NewFSUserStore(t.TempDir())
	ctx := context.Background()

	if err := store.CreateUser(ctx, testUser("Alice@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Error("lookup should be case sensitive")
	}
}
