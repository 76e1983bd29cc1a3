package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quiz-platform-service/internal/domain"
)

// AttemptService runs the quiz attempt lifecycle: start, grade, complete, certify.
type AttemptService struct {
	attempts     AttemptStore
	quizzes      QuizRepository
	certificates *CertificateMinter
	feed         *ResultFeed
	now          func() time.Time
	newID        func() string
}

func NewAttemptService(attempts AttemptStore, quizzes QuizRepository, certificates *CertificateMinter, feed *ResultFeed) *AttemptService {
	return NewAttemptServiceWithClock(attempts, quizzes, certificates, feed, time.Now)
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(attempts AttemptStore, quizzes QuizRepository, certificates *CertificateMinter, feed *ResultFeed, now func() time.Time) *AttemptService {
	return &AttemptService{
		attempts:     attempts,
		quizzes:      quizzes,
		certificates: certificates,
		feed:         feed,
		now:          now,
		newID:        uuid.NewString,
	}
}

// QuizSummary is the quiz metadata handed to a quiz-taker.
type QuizSummary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	TimeLimitMinutes int    `json:"time_limit_minutes"`
}

// PublicOption is an answer option without grading data.
type PublicOption struct {
	ID           string `json:"id"`
	QuestionID   string `json:"question_id"`
	Text         string `json:"option_text"`
	DisplayOrder int    `json:"display_order"`
}

// PublicQuestion is a question as served to a quiz-taker.
type PublicQuestion struct {
	ID           string              `json:"id"`
	QuizID       string              `json:"quiz_id"`
	Type         domain.QuestionType `json:"question_type"`
	Text         string              `json:"question_text"`
	Points       int                 `json:"points"`
	DisplayOrder int                 `json:"display_order"`
	Options      []PublicOption      `json:"options"`
}

// StartedAttempt is returned when an attempt begins.
type StartedAttempt struct {
	AttemptID string           `json:"attempt_id"`
	Quiz      QuizSummary      `json:"quiz"`
	Questions []PublicQuestion `json:"questions"`
	StartedAt time.Time        `json:"started_at"`
}

// SubmitResult is the graded outcome of an attempt.
type SubmitResult struct {
	Attempt        domain.Attempt `json:"attempt"`
	Score          int            `json:"score"`
	CorrectAnswers int            `json:"correct_answers"`
	TotalQuestions int            `json:"total_questions"`
	Passed         bool           `json:"passed"`
	CertificateURL *string        `json:"certificate_url"`
}

// Start opens a new in-progress attempt and serves the first questions_per_attempt
// questions of the quiz in display order.
func (s *AttemptService) Start(ctx context.Context, userID, quizID string) (StartedAttempt, error) {
	quiz, err := s.publishedQuiz(ctx, quizID)
	if err != nil {
		return StartedAttempt{}, err
	}

	questions := quiz.Questions
	if quiz.QuestionsPerAttempt > 0 && len(questions) > quiz.QuestionsPerAttempt {
		questions = questions[:quiz.QuestionsPerAttempt]
	}
	if len(questions) == 0 {
		return StartedAttempt{}, domain.ErrNoQuestions
	}

	attempt := domain.Attempt{
		ID:             s.newID(),
		UserID:         userID,
		QuizID:         quiz.ID,
		Status:         domain.AttemptInProgress,
		TotalQuestions: len(questions),
		StartedAt:      s.now().UTC(),
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return StartedAttempt{}, fmt.Errorf("create attempt: %w", err)
	}

	return StartedAttempt{
		AttemptID: attempt.ID,
		Quiz: QuizSummary{
			ID:               quiz.ID,
			Title:            quiz.Title,
			Description:      quiz.Description,
			TimeLimitMinutes: quiz.TimeLimitMinutes,
		},
		Questions: publicQuestions(questions),
		StartedAt: attempt.StartedAt,
	}, nil
}

// Submit grades the answers against the current in-progress attempt and completes it.
// Scores are computed against the number of submitted answers. The attempt update,
// answers, progress and certificate are written in one transaction, and only one
// submission per attempt can win.
func (s *AttemptService) Submit(ctx context.Context, userID, quizID string, answers []domain.AnswerSubmission) (SubmitResult, error) {
	// An attempt started before the quiz was unpublished can still be finished.
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return SubmitResult{}, err
	}

	attempt, err := s.attempts.LatestInProgressAttempt(ctx, userID, quiz.ID)
	if errors.Is(err, domain.ErrAttemptNotFound) {
		return SubmitResult{}, domain.ErrNoActiveAttempt
	}
	if err != nil {
		return SubmitResult{}, fmt.Errorf("find active attempt: %w", err)
	}

	now := s.now().UTC()
	graded, correctCount, err := s.gradeAnswers(quiz, attempt.ID, answers, now)
	if err != nil {
		return SubmitResult{}, err
	}

	score := ScorePercentage(correctCount, len(answers))
	passed := Passed(score, quiz.PassingScore)
	attempt.Status = domain.AttemptCompleted
	attempt.CorrectAnswers = correctCount
	attempt.Score = &score
	attempt.CompletedAt = &now

	var certificate *domain.Certificate
	err = s.attempts.RunInTx(ctx, func(ctx context.Context, tx AttemptTx) error {
		if err := tx.CompleteAttempt(ctx, attempt); err != nil {
			return err
		}
		if err := tx.InsertAnswers(ctx, graded); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
		cert, err := s.recordCompletion(ctx, tx, attempt, quiz.PassingScore, now)
		if err != nil {
			return err
		}
		certificate = cert
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	if s.feed != nil {
		s.feed.Publish(domain.AttemptEvent{
			AttemptID:   attempt.ID,
			QuizID:      attempt.QuizID,
			UserID:      attempt.UserID,
			Score:       score,
			Passed:      passed,
			CompletedAt: now,
		})
	}

	result := SubmitResult{
		Attempt:        attempt,
		Score:          score,
		CorrectAnswers: correctCount,
		TotalQuestions: len(answers),
		Passed:         passed,
	}
	if certificate != nil {
		url := certificate.CertificateURL
		result.CertificateURL = &url
	}
	return result, nil
}

// gradeAnswers grades every submission in request order. Any unknown question or
// ungradable type rejects the whole submission before anything is written.
func (s *AttemptService) gradeAnswers(quiz domain.Quiz, attemptID string, answers []domain.AnswerSubmission, at time.Time) ([]domain.UserAnswer, int, error) {
	graded := make([]domain.UserAnswer, 0, len(answers))
	correctCount := 0
	for _, answer := range answers {
		question, ok := quiz.Question(answer.QuestionID)
		if !ok {
			return nil, 0, domain.ErrQuestionNotFound
		}
		correct, points, err := Grade(question, answer.SelectedOptions)
		if err != nil {
			return nil, 0, err
		}
		if correct {
			correctCount++
		}
		selected := answer.SelectedOptions
		if selected == nil {
			selected = []string{}
		}
		graded = append(graded, domain.UserAnswer{
			ID:              s.newID(),
			AttemptID:       attemptID,
			QuestionID:      question.ID,
			SelectedOptions: selected,
			IsCorrect:       correct,
			PointsEarned:    points,
			AnsweredAt:      at,
		})
	}
	return graded, correctCount, nil
}

func (s *AttemptService) publishedQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if !quiz.IsPublished {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *AttemptService) loadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz %s: %w", quizID, err)
	}
	return quiz, nil
}

func publicQuestions(questions []domain.Question) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		options := make([]PublicOption, 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, PublicOption{
				ID:           opt.ID,
				QuestionID:   opt.QuestionID,
				Text:         opt.Text,
				DisplayOrder: opt.DisplayOrder,
			})
		}
		out = append(out, PublicQuestion{
			ID:           q.ID,
			QuizID:       q.QuizID,
			Type:         q.Type,
			Text:         q.Text,
			Points:       q.Points,
			DisplayOrder: q.DisplayOrder,
			Options:      options,
		})
	}
	return out
}
