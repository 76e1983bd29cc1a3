package app

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-platform-service/internal/domain"
)

// CertificateMinter builds certificate records with an opaque, unguessable token.
// The token doubles as the public lookup key behind the certificate URL.
type CertificateMinter struct {
	baseURL  string
	newToken func() string
}

func NewCertificateMinter(baseURL string) *CertificateMinter {
	return &CertificateMinter{
		baseURL:  strings.TrimRight(baseURL, "/"),
		newToken: uuid.NewString,
	}
}

// Mint returns a new certificate for the pair. Stores keep the existing ID and
// issued_at when the pair already has one.
func (m *CertificateMinter) Mint(userID, quizID string, score int, at time.Time) domain.Certificate {
	token := m.newToken()
	return domain.Certificate{
		ID:             uuid.NewString(),
		UserID:         userID,
		QuizID:         quizID,
		Token:          token,
		CertificateURL: m.URL(token),
		ScoreAchieved:  score,
		IssuedAt:       at,
	}
}

// URL is the public address of a certificate token.
func (m *CertificateMinter) URL(token string) string {
	return m.baseURL + "/certificates/" + token
}
