package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"quiz-platform-service/internal/domain"
)

// UserService exposes a user's own history.
type UserService struct {
	users    UserStore
	attempts AttemptStore
	catalog  CatalogStore
	now      func() time.Time
}

func NewUserService(users UserStore, attempts AttemptStore, catalog CatalogStore) *UserService {
	return &UserService{users: users, attempts: attempts, catalog: catalog, now: time.Now}
}

func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.users.GetUser(ctx, userID)
}

// UpdateProfile changes the display name; certificates pick it up on the next lookup.
func (s *UserService) UpdateProfile(ctx context.Context, userID, fullName string) (domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return domain.User{}, domain.Invalid("full_name is required")
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	user.FullName = fullName
	user.UpdatedAt = s.now().UTC()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ListUsers is the admin view of every account.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) Progress(ctx context.Context, userID string) ([]domain.Progress, error) {
	return s.attempts.ListProgress(ctx, userID)
}

func (s *UserService) Attempts(ctx context.Context, userID string) ([]domain.Attempt, error) {
	return s.attempts.ListAttempts(ctx, userID)
}

func (s *UserService) Certificates(ctx context.Context, userID string) ([]domain.Certificate, error) {
	return s.attempts.ListCertificates(ctx, userID)
}

// CertificateView is the public face of a certificate.
type CertificateView struct {
	CertificateURL string    `json:"certificate_url"`
	HolderName     string    `json:"holder_name"`
	QuizID         string    `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title"`
	ScoreAchieved  int       `json:"score_achieved"`
	IssuedAt       time.Time `json:"issued_at"`
}

// VerifyCertificate resolves a certificate token for public display.
func (s *UserService) VerifyCertificate(ctx context.Context, token string) (CertificateView, error) {
	cert, err := s.attempts.CertificateByToken(ctx, token)
	if err != nil {
		return CertificateView{}, err
	}
	user, err := s.users.GetUser(ctx, cert.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return CertificateView{}, err
	}
	quiz, err := s.catalog.GetQuiz(ctx, cert.QuizID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return CertificateView{}, err
	}
	return CertificateView{
		CertificateURL: cert.CertificateURL,
		HolderName:     user.FullName,
		QuizID:         cert.QuizID,
		QuizTitle:      quiz.Title,
		ScoreAchieved:  cert.ScoreAchieved,
		IssuedAt:       cert.IssuedAt,
	}, nil
}
