package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"paperback/internal/domain"
	"paperback/internal/repos"
	"paperback/internal/services"
)

func authFixture(t *testing.T) *services.AuthService {
	t.Helper()
	db := memdb(t)
	return &services.AuthService{
		Users:  repos.NewUserRepo(db),
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	auth := authFixture(t)

	u, err := auth.Register("New Reader", "new@paperback.test", "Sup3rSecret")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != domain.RoleUser {
		t.Fatalf("role = %s, want user", u.Role)
	}
	if strings.Contains(u.Hash, "Sup3rSecret") {
		t.Fatal("password stored in plaintext")
	}

	got, tok, err := auth.Login("new@paperback.test", "Sup3rSecret")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID || tok == "" {
		t.Fatalf("login user=%+v token=%q", got, tok)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := authFixture(t)

	// reader@paperback.test is seeded.
	_, err := auth.Register("Imposter", "reader@paperback.test", "Sup3rSecret")
	if !errors.Is(err, services.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	auth := authFixture(t)

	if _, _, err := auth.Login("reader@paperback.test", "nope"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("err = %v, want ErrBadCreds", err)
	}
	if _, _, err := auth.Login("ghost@paperback.test", "Passw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("unknown email err = %v, want ErrBadCreds", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	auth := authFixture(t)
	ctx := context.Background()

	u, err := auth.Users.ByEmail("admin@paperback.test")
	if err != nil {
		t.Fatal(err)
	}
	tok, err := auth.IssueToken(u)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := auth.ParseToken(ctx, tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != u.ID || claims.Role != domain.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}

	// Tampering invalidates the token.
	if _, err := auth.ParseToken(ctx, tok+"x"); !errors.Is(err, services.ErrTokenInvalid) {
		t.Fatalf("tampered token err = %v", err)
	}

	// A different secret invalidates the token.
	other := &services.AuthService{Users: auth.Users, Secret: []byte("other"), TTL: time.Hour}
	if _, err := other.ParseToken(ctx, tok); !errors.Is(err, services.ErrTokenInvalid) {
		t.Fatalf("wrong secret err = %v", err)
	}
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memRevoker) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]bool{}
	}
	m.revoked[jti] = true
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, jti string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[jti]
}

func TestLogoutRevokesToken(t *testing.T) {
	auth := authFixture(t)
	auth.Revoker = &memRevoker{}
	ctx := context.Background()

	_, tok, err := auth.Login("reader@paperback.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := auth.ParseToken(ctx, tok)
	if err != nil {
		t.Fatal(err)
	}

	if err := auth.Logout(ctx, claims); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.ParseToken(ctx, tok); !errors.Is(err, services.ErrTokenInvalid) {
		t.Fatalf("revoked token err = %v, want ErrTokenInvalid", err)
	}
}

func TestGoogleLoginLinksExistingAccount(t *testing.T) {
	auth := authFixture(t)

	u, tok, err := auth.GoogleLogin("google-123", "reader@paperback.test", "Reader")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u-reader" || tok == "" {
		t.Fatalf("linked user = %+v", u)
	}

	// Next login resolves straight by google id.
	again, _, err := auth.GoogleLogin("google-123", "different@paperback.test", "Reader")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != "u-reader" {
		t.Fatalf("relogin resolved %s, want u-reader", again.ID)
	}
}

func TestGoogleLoginCreatesAccount(t *testing.T) {
	auth := authFixture(t)

	u, _, err := auth.GoogleLogin("google-999", "fresh@paperback.test", "Fresh")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != domain.RoleUser || u.Email != "fresh@paperback.test" {
		t.Fatalf("created user = %+v", u)
	}

	// The random placeholder hash must not allow password login.
	if _, _, err := auth.Login("fresh@paperback.test", ""); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("password login for oauth account err = %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	auth := authFixture(t)

	if err := auth.ChangePassword("u-reader", "wrong", "NewPassw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("wrong current err = %v", err)
	}
	if err := auth.ChangePassword("u-reader", "Passw0rd!", "NewPassw0rd!"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := auth.Login("reader@paperback.test", "NewPassw0rd!"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, _, err := auth.Login("reader@paperback.test", "Passw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("old password still works: %v", err)
	}
}
