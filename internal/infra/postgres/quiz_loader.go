package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-platform-service/internal/domain"
)

// QuizLoader reads full quiz content (questions and options in display order) over pgx.
// It is the miss path of the quiz caches.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx, `
		SELECT id, category_id, title, description, difficulty_level, questions_per_attempt,
		       time_limit_minutes, passing_score, is_published, created_at, updated_at
		FROM quizzes WHERE id = $1`, quizID).Scan(
		&quiz.ID, &quiz.CategoryID, &quiz.Title, &quiz.Description, &quiz.DifficultyLevel,
		&quiz.QuestionsPerAttempt, &quiz.TimeLimitMinutes, &quiz.PassingScore, &quiz.IsPublished,
		&quiz.CreatedAt, &quiz.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx, `
		SELECT q.id, q.question_type, q.question_text, q.points, q.display_order,
		       o.id, o.option_text, o.is_correct, o.display_order
		FROM questions q
		LEFT JOIN answer_options o ON o.question_id = q.id
		WHERE q.quiz_id = $1
		ORDER BY q.display_order, q.id, o.display_order, o.id`, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	quiz.Questions = make([]domain.Question, 0)
	for rows.Next() {
		var (
			q           domain.Question
			qType       string
			optID       *string
			optText     *string
			optCorrect  *bool
			optPosition *int
		)
		if err := rows.Scan(&q.ID, &qType, &q.Text, &q.Points, &q.DisplayOrder,
			&optID, &optText, &optCorrect, &optPosition); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}

		q.Type = domain.QuestionType(qType)

		n := len(quiz.Questions)
		if n == 0 || quiz.Questions[n-1].ID != q.ID {
			q.QuizID = quiz.ID
			q.Options = make([]domain.AnswerOption, 0)
			quiz.Questions = append(quiz.Questions, q)
			n++
		}
		if optID == nil {
			continue
		}
		quiz.Questions[n-1].Options = append(quiz.Questions[n-1].Options, domain.AnswerOption{
			ID:           *optID,
			QuestionID:   q.ID,
			Text:         *optText,
			IsCorrect:    *optCorrect,
			DisplayOrder: *optPosition,
		})
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}
