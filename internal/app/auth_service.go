package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-platform-service/internal/auth"
	"quiz-platform-service/internal/domain"
)

// AuthService registers users, issues access tokens and resolves them back to identities.
type AuthService struct {
	users      UserStore
	tokens     *auth.TokenIssuer
	revoked    RevocationStore
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users UserStore, tokens *auth.TokenIssuer, revoked RevocationStore, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		revoked:    revoked,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Session is a signed-in user with their access token.
type Session struct {
	User        domain.User `json:"user"`
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (Session, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, domain.Invalid("a valid email is required")
	}
	if len(password) < auth.MinPasswordLength {
		return Session{}, domain.Invalid(fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return Session{}, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrNotFound):
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return Session{}, err
	}
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return Session{}, domain.ErrInactiveUser
	}
	return s.session(user)
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims auth.Claims) error {
	ttl := s.tokens.Remaining(claims)
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}

// Authenticate resolves a raw bearer token to its claims, rejecting revoked tokens
// and users that were deactivated after the token was issued.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (auth.Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return auth.Claims{}, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return auth.Claims{}, domain.ErrInvalidToken
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return auth.Claims{}, domain.ErrInactiveUser
	}
	if err != nil {
		return auth.Claims{}, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return auth.Claims{}, domain.ErrInactiveUser
	}
	claims.Role = user.Role
	return claims, nil
}

func (s *AuthService) session(user domain.User) (Session, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, AccessToken: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
