package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/auth"
	"quiz-platform-service/internal/domain"
)

// Admin is the account created alongside the sample catalog.
type Admin struct {
	Email    string
	Password string
	FullName string
}

// Sample loads the demo catalog and an admin account. Every item is created only
// when missing, so a run that failed halfway is completed by the next one. The
// admin comes last.
func Sample(ctx context.Context, catalog *app.CatalogService, users app.UserStore, admin Admin, bcryptCost int) error {
	existing, err := catalog.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	categories := make(map[string]domain.Category)
	for _, c := range existing {
		categories[c.Name] = c
	}
	created := 0
	for _, c := range []domain.Category{
		{Name: "General Knowledge", Description: "Test your knowledge on general topics", DisplayOrder: 1},
		{Name: "Science", Description: "Explore the wonders of science", DisplayOrder: 2},
		{Name: "History", Description: "Learn about important historical events", DisplayOrder: 3},
	} {
		if _, ok := categories[c.Name]; ok {
			continue
		}
		category, err := catalog.CreateCategory(ctx, c)
		if err != nil {
			return fmt.Errorf("create category %s: %w", c.Name, err)
		}
		categories[c.Name] = category
		created++
	}

	general, err := ensureQuiz(ctx, catalog, domain.Quiz{
		Title:               "General Knowledge Quiz",
		Description:         "Test your general knowledge with this fun quiz!",
		CategoryID:          categories["General Knowledge"].ID,
		DifficultyLevel:     "medium",
		QuestionsPerAttempt: 10,
		PassingScore:        70,
		IsPublished:         true,
	})
	if err != nil {
		return err
	}
	science, err := ensureQuiz(ctx, catalog, domain.Quiz{
		Title:               "Basic Science Quiz",
		Description:         "Test your knowledge of basic science concepts",
		CategoryID:          categories["Science"].ID,
		DifficultyLevel:     "medium",
		QuestionsPerAttempt: 8,
		PassingScore:        75,
		IsPublished:         true,
	})
	if err != nil {
		return err
	}

	questions := []domain.Question{
		{
			QuizID: general.ID, Type: domain.QuestionMultipleChoice, Points: 1, DisplayOrder: 1,
			Text:    "What is the capital of France?",
			Options: options("Paris", "London", "Berlin", "Paris", "Madrid"),
		},
		{
			QuizID: general.ID, Type: domain.QuestionYesNo, Points: 1, DisplayOrder: 2,
			Text:    "Is water composed of two hydrogen atoms and one oxygen atom?",
			Options: options("Yes", "Yes", "No"),
		},
		{
			QuizID: science.ID, Type: domain.QuestionMultipleChoice, Points: 1, DisplayOrder: 1,
			Text:    "What is the chemical symbol for gold?",
			Options: options("Au", "Go", "Gd", "Au", "Ag"),
		},
	}
	for _, q := range questions {
		present, err := catalog.ListQuestions(ctx, domain.QuestionFilter{QuizID: q.QuizID})
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}
		if hasQuestion(present, q.Text) {
			continue
		}
		if _, err := catalog.CreateQuestion(ctx, q); err != nil {
			return fmt.Errorf("create question %q: %w", q.Text, err)
		}
		created++
	}

	adminCreated, err := ensureAdmin(ctx, users, admin, bcryptCost)
	if err != nil {
		return err
	}
	if adminCreated {
		created++
	}
	if created == 0 {
		log.Printf("seed: sample data already present, nothing to do")
		return nil
	}
	log.Printf("seed: created %d missing items (admin %s)", created, admin.Email)
	return nil
}

// ensureQuiz finds the quiz by title within its category or creates it.
func ensureQuiz(ctx context.Context, catalog *app.CatalogService, quiz domain.Quiz) (domain.Quiz, error) {
	quizzes, err := catalog.ListAll(ctx, domain.QuizFilter{CategoryID: quiz.CategoryID})
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("list quizzes: %w", err)
	}
	for _, q := range quizzes {
		if q.Title == quiz.Title {
			return q, nil
		}
	}
	created, err := catalog.CreateQuiz(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz %s: %w", quiz.Title, err)
	}
	return created, nil
}

func ensureAdmin(ctx context.Context, users app.UserStore, admin Admin, bcryptCost int) (bool, error) {
	_, err := users.GetUserByEmail(ctx, admin.Email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := auth.HashPassword(admin.Password, bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	now := time.Now().UTC()
	if err := users.CreateUser(ctx, domain.User{
		ID:           uuid.NewString(),
		Email:        admin.Email,
		FullName:     admin.FullName,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

func hasQuestion(questions []domain.Question, text string) bool {
	for _, q := range questions {
		if q.Text == text {
			return true
		}
	}
	return false
}

// options lists answer texts in display order, flagging the one equal to correct.
func options(correct string, texts ...string) []domain.AnswerOption {
	out := make([]domain.AnswerOption, 0, len(texts))
	for i, text := range texts {
		out = append(out, domain.AnswerOption{Text: text, IsCorrect: text == correct, DisplayOrder: i + 1})
	}
	return out
}
