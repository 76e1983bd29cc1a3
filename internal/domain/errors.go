package domain

import "errors"

// Error kinds. Every error the service returns on purpose unwraps to one of these,
// which is what the transport layer maps to a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

var (
	// ErrQuizNotFound covers both missing and unpublished quizzes.
	ErrQuizNotFound = kindError(ErrNotFound, "quiz not found or not published")
	// ErrQuestionNotFound indicates a submitted question ID is unknown to the quiz.
	ErrQuestionNotFound = kindError(ErrNotFound, "question not found")
	ErrCategoryNotFound = kindError(ErrNotFound, "category not found")
	ErrUserNotFound     = kindError(ErrNotFound, "user not found")
	// ErrCertificateNotFound is returned for unknown certificate tokens.
	ErrCertificateNotFound = kindError(ErrNotFound, "certificate not found")
	ErrAttemptNotFound     = kindError(ErrNotFound, "attempt not found")

	// ErrNoQuestions is returned when a quiz has nothing to serve.
	ErrNoQuestions = kindError(ErrInvalidState, "no questions available for this quiz")
	// ErrNoActiveAttempt is returned when submitting without an in-progress attempt.
	ErrNoActiveAttempt = kindError(ErrInvalidState, "no active quiz attempt found")
	// ErrAttemptNotActive is returned when an attempt stopped being in progress
	// between lookup and completion, i.e. a concurrent submit won.
	ErrAttemptNotActive = kindError(ErrInvalidState, "quiz attempt is no longer in progress")
	// ErrUnknownQuestionType rejects grading of stored data with an unexpected type.
	ErrUnknownQuestionType = kindError(ErrInvalidState, "unknown question type")
	// ErrCategoryInUse and ErrQuizInUse protect rows that other records still reference.
	ErrCategoryInUse = kindError(ErrInvalidState, "cannot delete category with associated quizzes")
	ErrQuizInUse     = kindError(ErrInvalidState, "cannot delete quiz with recorded attempts")

	ErrEmailTaken         = kindError(ErrConflict, "user with this email already exists")
	ErrInvalidCredentials = kindError(ErrUnauthorized, "invalid email or password")
	ErrInactiveUser       = kindError(ErrUnauthorized, "user not found or inactive")
	ErrInvalidToken       = kindError(ErrUnauthorized, "invalid or expired token")
)

type kindedError struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &kindedError{kind: kind, msg: msg}
}

func (e *kindedError) Error() string { return e.msg }

func (e *kindedError) Unwrap() error { return e.kind }

// ValidationError describes rejected input in a client-safe way.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
