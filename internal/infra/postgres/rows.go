package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quiz-platform-service/internal/domain"
)

// Row types mirror the tables one-to-one and never leave this package.

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:users"`

	ID           string    `bun:"id,pk"`
	Email        string    `bun:"email"`
	FullName     string    `bun:"full_name"`
	PasswordHash string    `bun:"password_hash"`
	Role         string    `bun:"role"`
	IsActive     bool      `bun:"is_active"`
	CreatedAt    time.Time `bun:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at"`
}

func userFromDomain(u domain.User) userRow {
	return userRow{
		ID: u.ID, Email: u.Email, FullName: u.FullName, PasswordHash: u.PasswordHash,
		Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID: r.ID, Email: r.Email, FullName: r.FullName, PasswordHash: r.PasswordHash,
		Role: r.Role, IsActive: r.IsActive, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type categoryRow struct {
	bun.BaseModel `bun:"table:categories,alias:categories"`

	ID           string    `bun:"id,pk"`
	Name         string    `bun:"name"`
	Description  string    `bun:"description"`
	DisplayOrder int       `bun:"display_order"`
	CreatedAt    time.Time `bun:"created_at"`
}

func (r categoryRow) toDomain() domain.Category {
	return domain.Category{ID: r.ID, Name: r.Name, Description: r.Description, DisplayOrder: r.DisplayOrder, CreatedAt: r.CreatedAt}
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:quizzes"`

	ID                  string    `bun:"id,pk"`
	CategoryID          string    `bun:"category_id"`
	Title               string    `bun:"title"`
	Description         string    `bun:"description"`
	DifficultyLevel     string    `bun:"difficulty_level"`
	QuestionsPerAttempt int       `bun:"questions_per_attempt"`
	TimeLimitMinutes    int       `bun:"time_limit_minutes"`
	PassingScore        int       `bun:"passing_score"`
	IsPublished         bool      `bun:"is_published"`
	CreatedAt           time.Time `bun:"created_at"`
	UpdatedAt           time.Time `bun:"updated_at"`
}

func quizFromDomain(q domain.Quiz) quizRow {
	return quizRow{
		ID: q.ID, CategoryID: q.CategoryID, Title: q.Title, Description: q.Description,
		DifficultyLevel: q.DifficultyLevel, QuestionsPerAttempt: q.QuestionsPerAttempt,
		TimeLimitMinutes: q.TimeLimitMinutes, PassingScore: q.PassingScore, IsPublished: q.IsPublished,
		CreatedAt: q.CreatedAt, UpdatedAt: q.UpdatedAt,
	}
}

func (r quizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID: r.ID, CategoryID: r.CategoryID, Title: r.Title, Description: r.Description,
		DifficultyLevel: r.DifficultyLevel, QuestionsPerAttempt: r.QuestionsPerAttempt,
		TimeLimitMinutes: r.TimeLimitMinutes, PassingScore: r.PassingScore, IsPublished: r.IsPublished,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:questions"`

	ID           string `bun:"id,pk"`
	QuizID       string `bun:"quiz_id"`
	Type         string `bun:"question_type"`
	Text         string `bun:"question_text"`
	Points       int    `bun:"points"`
	DisplayOrder int    `bun:"display_order"`
}

func questionFromDomain(q domain.Question) questionRow {
	return questionRow{
		ID: q.ID, QuizID: q.QuizID, Type: string(q.Type), Text: q.Text,
		Points: q.Points, DisplayOrder: q.DisplayOrder,
	}
}

func (r questionRow) toDomain() domain.Question {
	return domain.Question{
		ID: r.ID, QuizID: r.QuizID, Type: domain.QuestionType(r.Type), Text: r.Text,
		Points: r.Points, DisplayOrder: r.DisplayOrder,
	}
}

type optionRow struct {
	bun.BaseModel `bun:"table:answer_options,alias:answer_options"`

	ID           string `bun:"id,pk"`
	QuestionID   string `bun:"question_id"`
	Text         string `bun:"option_text"`
	IsCorrect    bool   `bun:"is_correct"`
	DisplayOrder int    `bun:"display_order"`
}

func (r optionRow) toDomain() domain.AnswerOption {
	return domain.AnswerOption{
		ID: r.ID, QuestionID: r.QuestionID, Text: r.Text, IsCorrect: r.IsCorrect, DisplayOrder: r.DisplayOrder,
	}
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:quiz_attempts"`

	ID             string     `bun:"id,pk"`
	UserID         string     `bun:"user_id"`
	QuizID         string     `bun:"quiz_id"`
	Status         string     `bun:"status"`
	TotalQuestions int        `bun:"total_questions"`
	CorrectAnswers int        `bun:"correct_answers"`
	Score          *int       `bun:"score"`
	StartedAt      time.Time  `bun:"started_at"`
	CompletedAt    *time.Time `bun:"completed_at"`
}

func attemptFromDomain(a domain.Attempt) attemptRow {
	return attemptRow{
		ID: a.ID, UserID: a.UserID, QuizID: a.QuizID, Status: string(a.Status),
		TotalQuestions: a.TotalQuestions, CorrectAnswers: a.CorrectAnswers, Score: a.Score,
		StartedAt: a.StartedAt, CompletedAt: a.CompletedAt,
	}
}

func (r attemptRow) toDomain() domain.Attempt {
	return domain.Attempt{
		ID: r.ID, UserID: r.UserID, QuizID: r.QuizID, Status: domain.AttemptStatus(r.Status),
		TotalQuestions: r.TotalQuestions, CorrectAnswers: r.CorrectAnswers, Score: r.Score,
		StartedAt: r.StartedAt, CompletedAt: r.CompletedAt,
	}
}

type answerRow struct {
	bun.BaseModel `bun:"table:user_answers,alias:user_answers"`

	ID              string    `bun:"id,pk"`
	AttemptID       string    `bun:"attempt_id"`
	QuestionID      string    `bun:"question_id"`
	SelectedOptions []string  `bun:"selected_options,array"`
	IsCorrect       bool      `bun:"is_correct"`
	PointsEarned    int       `bun:"points_earned"`
	AnsweredAt      time.Time `bun:"answered_at"`
}

func (r answerRow) toDomain() domain.UserAnswer {
	return domain.UserAnswer{
		ID: r.ID, AttemptID: r.AttemptID, QuestionID: r.QuestionID, SelectedOptions: r.SelectedOptions,
		IsCorrect: r.IsCorrect, PointsEarned: r.PointsEarned, AnsweredAt: r.AnsweredAt,
	}
}

type progressRow struct {
	bun.BaseModel `bun:"table:user_progress,alias:user_progress"`

	UserID        string    `bun:"user_id,pk"`
	QuizID        string    `bun:"quiz_id,pk"`
	TotalAttempts int       `bun:"total_attempts"`
	BestScore     int       `bun:"best_score"`
	LastAttemptAt time.Time `bun:"last_attempt_at"`
}

func (r progressRow) toDomain() domain.Progress {
	return domain.Progress{
		UserID: r.UserID, QuizID: r.QuizID, TotalAttempts: r.TotalAttempts,
		BestScore: r.BestScore, LastAttemptAt: r.LastAttemptAt,
	}
}

type certificateRow struct {
	bun.BaseModel `bun:"table:certificates,alias:certificates"`

	ID             string    `bun:"id,pk"`
	UserID         string    `bun:"user_id"`
	QuizID         string    `bun:"quiz_id"`
	Token          string    `bun:"token"`
	CertificateURL string    `bun:"certificate_url"`
	ScoreAchieved  int       `bun:"score_achieved"`
	IssuedAt       time.Time `bun:"issued_at"`
}

func certificateFromDomain(c domain.Certificate) certificateRow {
	return certificateRow{
		ID: c.ID, UserID: c.UserID, QuizID: c.QuizID, Token: c.Token,
		CertificateURL: c.CertificateURL, ScoreAchieved: c.ScoreAchieved, IssuedAt: c.IssuedAt,
	}
}

func (r certificateRow) toDomain() domain.Certificate {
	return domain.Certificate{
		ID: r.ID, UserID: r.UserID, QuizID: r.QuizID, Token: r.Token,
		CertificateURL: r.CertificateURL, ScoreAchieved: r.ScoreAchieved, IssuedAt: r.IssuedAt,
	}
}
