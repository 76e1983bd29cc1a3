package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-platform-service/internal/domain"
)

// CatalogService manages categories, quizzes and questions.
type CatalogService struct {
	store   CatalogStore
	quizzes QuizRepository
	now     func() time.Time
	newID   func() string
}

func NewCatalogService(store CatalogStore, quizzes QuizRepository) *CatalogService {
	return &CatalogService{
		store:   store,
		quizzes: quizzes,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// ListPublished returns published quizzes matching filter, newest first.
func (s *CatalogService) ListPublished(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	filter.PublishedOnly = true
	return s.store.ListQuizzes(ctx, filter)
}

// ListAll returns quizzes in any publication state.
func (s *CatalogService) ListAll(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	filter.PublishedOnly = false
	return s.store.ListQuizzes(ctx, filter)
}

// GetPublished returns quiz metadata, hiding unpublished quizzes.
func (s *CatalogService) GetPublished(ctx context.Context, id string) (domain.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if !quiz.IsPublished {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

// GetContent returns quiz metadata with questions and correct answers, for admins.
func (s *CatalogService) GetContent(ctx context.Context, id string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return domain.Category{}, domain.Invalid("category name is required")
	}
	category.ID = s.newID()
	category.CreatedAt = s.now().UTC()
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, changes domain.Category) (domain.Category, error) {
	changes.Name = strings.TrimSpace(changes.Name)
	if changes.Name == "" {
		return domain.Category{}, domain.Invalid("category name is required")
	}
	current, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	current.Name = changes.Name
	current.Description = changes.Description
	current.DisplayOrder = changes.DisplayOrder
	if err := s.store.UpdateCategory(ctx, current); err != nil {
		return domain.Category{}, err
	}
	return current, nil
}

// DeleteCategory refuses while any quiz still belongs to the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.store.DeleteCategory(ctx, id)
}

func (s *CatalogService) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if err := ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if _, err := s.store.GetCategory(ctx, quiz.CategoryID); err != nil {
		return domain.Quiz{}, err
	}
	now := s.now().UTC()
	quiz.ID = s.newID()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	quiz.Questions = nil
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// UpdateQuiz replaces the editable fields of a quiz.
func (s *CatalogService) UpdateQuiz(ctx context.Context, id string, changes domain.Quiz) (domain.Quiz, error) {
	if err := ValidateQuiz(changes); err != nil {
		return domain.Quiz{}, err
	}
	current, err := s.store.GetQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if changes.CategoryID != current.CategoryID {
		if _, err := s.store.GetCategory(ctx, changes.CategoryID); err != nil {
			return domain.Quiz{}, err
		}
	}

	current.CategoryID = changes.CategoryID
	current.Title = changes.Title
	current.Description = changes.Description
	current.DifficultyLevel = changes.DifficultyLevel
	current.QuestionsPerAttempt = changes.QuestionsPerAttempt
	current.TimeLimitMinutes = changes.TimeLimitMinutes
	current.PassingScore = changes.PassingScore
	current.IsPublished = changes.IsPublished
	current.UpdatedAt = s.now().UTC()
	current.Questions = nil
	if err := s.store.UpdateQuiz(ctx, current); err != nil {
		return domain.Quiz{}, err
	}
	s.invalidate(ctx, id)
	return current, nil
}

// DeleteQuiz removes a quiz that nobody has attempted yet. Quizzes with history
// should be unpublished instead.
func (s *CatalogService) DeleteQuiz(ctx context.Context, id string) error {
	if err := s.store.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CatalogService) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	return s.store.GetQuestion(ctx, id)
}

func (s *CatalogService) ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	return s.store.ListQuestions(ctx, filter)
}

func (s *CatalogService) CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	if err := ValidateQuestion(question); err != nil {
		return domain.Question{}, err
	}
	if _, err := s.store.GetQuiz(ctx, question.QuizID); err != nil {
		return domain.Question{}, err
	}
	question.ID = s.newID()
	for i := range question.Options {
		question.Options[i].ID = s.newID()
		question.Options[i].QuestionID = question.ID
	}
	if err := s.store.CreateQuestion(ctx, question); err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx, question.QuizID)
	return question, nil
}

// UpdateQuestion replaces the question's text, type, points, order and options.
// The question stays on its quiz.
func (s *CatalogService) UpdateQuestion(ctx context.Context, id string, changes domain.Question) (domain.Question, error) {
	if err := ValidateQuestion(changes); err != nil {
		return domain.Question{}, err
	}
	current, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	changes.ID = current.ID
	changes.QuizID = current.QuizID
	for i := range changes.Options {
		changes.Options[i].ID = s.newID()
		changes.Options[i].QuestionID = current.ID
	}
	if err := s.store.UpdateQuestion(ctx, changes); err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx, current.QuizID)
	return changes, nil
}

func (s *CatalogService) DeleteQuestion(ctx context.Context, id string) error {
	quizID, err := s.store.DeleteQuestion(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, quizID)
	return nil
}

// invalidate is best effort: a failed eviction only delays visibility until the TTL.
func (s *CatalogService) invalidate(ctx context.Context, quizID string) {
	if err := s.quizzes.Invalidate(ctx, quizID); err != nil {
		log.Printf("invalidate quiz %s: %v", quizID, err)
	}
}

// ValidateQuiz checks the numeric ranges of quiz settings.
func ValidateQuiz(quiz domain.Quiz) error {
	switch {
	case strings.TrimSpace(quiz.Title) == "":
		return domain.Invalid("title is required")
	case quiz.CategoryID == "":
		return domain.Invalid("category_id is required")
	case quiz.PassingScore < 0 || quiz.PassingScore > 100:
		return domain.Invalid("passing_score must be between 0 and 100")
	case quiz.QuestionsPerAttempt < 1:
		return domain.Invalid("questions_per_attempt must be at least 1")
	case quiz.TimeLimitMinutes < 0:
		return domain.Invalid("time_limit_minutes must not be negative")
	}
	return nil
}

// ValidateQuestion enforces the option invariants grading relies on.
func ValidateQuestion(question domain.Question) error {
	if !question.Type.Valid() {
		return domain.Invalid(fmt.Sprintf("unsupported question_type %q", question.Type))
	}
	if question.Points < 1 {
		return domain.Invalid("points must be a positive integer")
	}
	if len(question.Options) < 2 {
		return domain.Invalid("a question needs at least two options")
	}
	correct := 0
	for _, opt := range question.Options {
		if opt.IsCorrect {
			correct++
		}
	}
	if question.Type != domain.QuestionCheckbox && correct != 1 {
		return domain.Invalid(fmt.Sprintf("%s questions need exactly one correct option", question.Type))
	}
	return nil
}
