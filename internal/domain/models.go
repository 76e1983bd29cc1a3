package domain

import "time"

// QuestionType enumerates the grading rules a question follows.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionCheckbox       QuestionType = "checkbox"
	QuestionYesNo          QuestionType = "yes_no"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionCheckbox, QuestionYesNo:
		return true
	}
	return false
}

// AttemptStatus is the lifecycle state of a quiz attempt.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Category groups quizzes.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Quiz is the quiz metadata plus, when loaded as content, its ordered questions.
type Quiz struct {
	ID                  string     `json:"id"`
	CategoryID          string     `json:"category_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	DifficultyLevel     string     `json:"difficulty_level"`
	QuestionsPerAttempt int        `json:"questions_per_attempt"`
	TimeLimitMinutes    int        `json:"time_limit_minutes"`
	PassingScore        int        `json:"passing_score"`
	IsPublished         bool       `json:"is_published"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	Questions           []Question `json:"questions,omitempty"`
}

// Question returns the question with the given id, if it belongs to the quiz.
func (q Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// Question is a single gradable item of a quiz.
type Question struct {
	ID           string         `json:"id"`
	QuizID       string         `json:"quiz_id"`
	Type         QuestionType   `json:"question_type"`
	Text         string         `json:"question_text"`
	Points       int            `json:"points"`
	DisplayOrder int            `json:"display_order"`
	Options      []AnswerOption `json:"options"`
}

// AnswerOption is one selectable answer. IsCorrect must never reach a quiz-taker before grading.
type AnswerOption struct {
	ID           string `json:"id"`
	QuestionID   string `json:"question_id"`
	Text         string `json:"option_text"`
	IsCorrect    bool   `json:"is_correct"`
	DisplayOrder int    `json:"display_order"`
}

// Attempt is one user's run through a quiz.
type Attempt struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	QuizID         string        `json:"quiz_id"`
	Status         AttemptStatus `json:"status"`
	TotalQuestions int           `json:"total_questions"`
	CorrectAnswers int           `json:"correct_answers"`
	Score          *int          `json:"score"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// UserAnswer is the graded answer to one question within an attempt.
type UserAnswer struct {
	ID              string    `json:"id"`
	AttemptID       string    `json:"attempt_id"`
	QuestionID      string    `json:"question_id"`
	SelectedOptions []string  `json:"selected_options"`
	IsCorrect       bool      `json:"is_correct"`
	PointsEarned    int       `json:"points_earned"`
	AnsweredAt      time.Time `json:"answered_at"`
}

// Progress summarises a user's attempts on a quiz.
type Progress struct {
	UserID        string    `json:"user_id"`
	QuizID        string    `json:"quiz_id"`
	TotalAttempts int       `json:"total_attempts"`
	BestScore     int       `json:"best_score"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

// Certificate is issued once per (user, quiz) and refreshed by later passing attempts.
type Certificate struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	QuizID         string    `json:"quiz_id"`
	Token          string    `json:"-"`
	CertificateURL string    `json:"certificate_url"`
	ScoreAchieved  int       `json:"score_achieved"`
	IssuedAt       time.Time `json:"issued_at"`
}

// AnswerSubmission is one submitted answer of a quiz attempt.
type AnswerSubmission struct {
	QuestionID      string   `json:"question_id"`
	SelectedOptions []string `json:"selected_options"`
}

// QuizFilter narrows catalog listings.
type QuizFilter struct {
	CategoryID      string
	DifficultyLevel string
	PublishedOnly   bool
}

// QuestionFilter narrows admin question listings.
type QuestionFilter struct {
	QuizID string
	Type   QuestionType
}

// AttemptEvent is published to live feeds once an attempt has been committed as completed.
type AttemptEvent struct {
	AttemptID   string    `json:"attempt_id"`
	QuizID      string    `json:"quiz_id"`
	UserID      string    `json:"user_id"`
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completed_at"`
}
