package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/auth"
	"quiz-platform-service/internal/domain"
	"quiz-platform-service/internal/infra/memory"
)

func newAuth(t *testing.T) (*app.AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	return app.NewAuthService(store, issuer, memory.NewTokenStore(), bcrypt.MinCost), store
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)

	session, err := svc.Register(ctx, " Ada@Example.com ", "correct-horse", "Ada Lovelace")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.User.Email != "ada@example.com" || session.User.Role != domain.RoleUser || session.AccessToken == "" {
		t.Fatalf("unexpected session %+v", session)
	}

	login, err := svc.Login(ctx, "ADA@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.Authenticate(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.UserID != session.User.ID || claims.IsAdmin() {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)

	if _, err := svc.Register(ctx, "not-an-email", "long-enough", "X"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	if _, err := svc.Register(ctx, "x@example.com", "short", "X"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected short password rejected, got %v", err)
	}
	if _, err := svc.Register(ctx, "x@example.com", "long-enough", "X"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "X@example.com", "long-enough", "Y"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuth(t)
	if _, err := svc.Register(ctx, "x@example.com", "long-enough", "X"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "x@example.com", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "long-enough"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	hash, _ := auth.HashPassword("long-enough", bcrypt.MinCost)
	_ = store.CreateUser(ctx, domain.User{ID: "off", Email: "off@example.com", PasswordHash: hash, Role: domain.RoleUser})
	if _, err := svc.Login(ctx, "off@example.com", "long-enough"); !errors.Is(err, domain.ErrInactiveUser) {
		t.Fatalf("expected inactive user, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)
	session, err := svc.Register(ctx, "x@example.com", "long-enough", "X")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := svc.Authenticate(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, session.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected revoked token rejected, got %v", err)
	}

	other, _ := svc.Login(ctx, "x@example.com", "long-enough")
	if _, err := svc.Authenticate(ctx, other.AccessToken); err != nil {
		t.Fatalf("expected a fresh token to stay valid, got %v", err)
	}
}

func TestAuthenticateUsesCurrentRole(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	issuer, _ := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := app.NewAuthService(store, issuer, memory.NewTokenStore(), bcrypt.MinCost)

	admin := domain.User{ID: "admin", Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true}
	_ = store.CreateUser(ctx, admin)
	stale := admin
	stale.Role = domain.RoleUser
	token, _, err := issuer.Issue(stale)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !claims.IsAdmin() {
		t.Fatalf("expected role refreshed from the user record")
	}

	if _, err := svc.Authenticate(ctx, "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	ghost, _, _ := issuer.Issue(domain.User{ID: "ghost", Role: domain.RoleUser})
	if _, err := svc.Authenticate(ctx, ghost); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unknown user rejected, got %v", err)
	}
}
