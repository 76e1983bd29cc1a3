package app

import (
	"context"
	"time"

	"quiz-platform-service/internal/domain"
)

// QuizRepository serves quiz content (metadata plus ordered questions with options),
// typically from a cache in front of the relational store.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	// Invalidate drops cached content after a catalog edit.
	Invalidate(ctx context.Context, quizID string) error
}

// AttemptStore persists attempts and everything derived from them.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt domain.Attempt) error
	// LatestInProgressAttempt returns the most recently started in-progress attempt
	// for the pair, or domain.ErrAttemptNotFound.
	LatestInProgressAttempt(ctx context.Context, userID, quizID string) (domain.Attempt, error)
	ListAttempts(ctx context.Context, userID string) ([]domain.Attempt, error)
	ListAnswers(ctx context.Context, attemptID string) ([]domain.UserAnswer, error)
	GetProgress(ctx context.Context, userID, quizID string) (domain.Progress, error)
	ListProgress(ctx context.Context, userID string) ([]domain.Progress, error)
	GetCertificate(ctx context.Context, userID, quizID string) (domain.Certificate, error)
	CertificateByToken(ctx context.Context, token string) (domain.Certificate, error)
	ListCertificates(ctx context.Context, userID string) ([]domain.Certificate, error)

	// RunInTx runs fn in a single transaction; any error rolls everything back.
	// fn must only touch the store through tx.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx AttemptTx) error) error
}

// AttemptTx holds the writes of one attempt submission.
type AttemptTx interface {
	// CompleteAttempt marks the attempt completed only if it is still in progress,
	// otherwise it returns domain.ErrAttemptNotActive.
	CompleteAttempt(ctx context.Context, attempt domain.Attempt) error
	InsertAnswers(ctx context.Context, answers []domain.UserAnswer) error
	// UpsertProgress creates the row with one attempt or increments it, keeping the best score.
	UpsertProgress(ctx context.Context, userID, quizID string, score int, at time.Time) (domain.Progress, error)
	// UpsertCertificate creates the certificate or overwrites its url, token and score.
	UpsertCertificate(ctx context.Context, cert domain.Certificate) (domain.Certificate, error)
}

// CatalogStore persists categories, quizzes and questions.
type CatalogStore interface {
	CreateCategory(ctx context.Context, category domain.Category) error
	GetCategory(ctx context.Context, id string) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) error
	// DeleteCategory returns domain.ErrCategoryInUse while quizzes reference it.
	DeleteCategory(ctx context.Context, id string) error
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) error
	// DeleteQuiz removes the quiz with its questions, or returns domain.ErrQuizInUse
	// once attempts have been recorded against it.
	DeleteQuiz(ctx context.Context, id string) error
	// GetQuiz returns metadata regardless of publication state.
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error)
	CreateQuestion(ctx context.Context, question domain.Question) error
	// GetQuestion returns the question with its options in display order.
	GetQuestion(ctx context.Context, id string) (domain.Question, error)
	ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)
	// UpdateQuestion rewrites the question fields and replaces its options.
	UpdateQuestion(ctx context.Context, question domain.Question) error
	// DeleteQuestion removes the question and its options and returns the owning quiz id.
	DeleteQuestion(ctx context.Context, id string) (string, error)
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
	// ListUsers returns every account, newest first.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// RevocationStore remembers logged-out token ids until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
