package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-platform-service/internal/domain"
)

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) error {
	row := categoryRow{
		ID: category.ID, Name: category.Name, Description: category.Description,
		DisplayOrder: category.DisplayOrder, CreatedAt: category.CreatedAt,
	}
	_, err := s.db.NewInsert().Model(&row).Exec(ctx)
	if pgCode(err) == codeUniqueViolation {
		return domain.Invalid("category name already exists")
	}
	return err
}

func (s *Store) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var row categoryRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	if err != nil {
		return domain.Category{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("display_order ASC, name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category domain.Category) error {
	row := categoryRow{ID: category.ID, Name: category.Name, Description: category.Description, DisplayOrder: category.DisplayOrder}
	res, err := s.db.NewUpdate().Model(&row).Column("name", "description", "display_order").WherePK().Exec(ctx)
	if pgCode(err) == codeUniqueViolation {
		return domain.Invalid("category name already exists")
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*categoryRow)(nil)).Where("id = ?", id).Exec(ctx)
	if pgCode(err) == codeForeignKeyViolation {
		return domain.ErrCategoryInUse
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	row := quizFromDomain(quiz)
	_, err := s.db.NewInsert().Model(&row).Exec(ctx)
	if pgCode(err) == codeForeignKeyViolation {
		return domain.ErrCategoryNotFound
	}
	return err
}

func (s *Store) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	row := quizFromDomain(quiz)
	res, err := s.db.NewUpdate().Model(&row).
		Column("category_id", "title", "description", "difficulty_level", "questions_per_attempt",
			"time_limit_minutes", "passing_score", "is_published", "updated_at").
		WherePK().
		Exec(ctx)
	if pgCode(err) == codeForeignKeyViolation {
		return domain.ErrCategoryNotFound
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// DeleteQuiz relies on the schema: questions cascade, attempts block the delete.
func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*quizRow)(nil)).Where("id = ?", id).Exec(ctx)
	if pgCode(err) == codeForeignKeyViolation {
		return domain.ErrQuizInUse
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	var row quizRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListQuizzes(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	var rows []quizRow
	q := s.db.NewSelect().Model(&rows)
	if filter.PublishedOnly {
		q = q.Where("is_published")
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.DifficultyLevel != "" {
		q = q.Where("difficulty_level = ?", filter.DifficultyLevel)
	}
	if err := q.OrderExpr("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// CreateQuestion inserts the question and its options together.
func (s *Store) CreateQuestion(ctx context.Context, question domain.Question) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := questionFromDomain(question)
		_, err := tx.NewInsert().Model(&row).Exec(ctx)
		if pgCode(err) == codeForeignKeyViolation {
			return domain.ErrQuizNotFound
		}
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		return insertOptions(ctx, tx, question)
	})
}

// UpdateQuestion keeps the owning quiz and swaps the option set wholesale.
func (s *Store) UpdateQuestion(ctx context.Context, question domain.Question) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := questionFromDomain(question)
		res, err := tx.NewUpdate().Model(&row).
			Column("question_type", "question_text", "points", "display_order").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update question: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrQuestionNotFound
		}
		if _, err := tx.NewDelete().Model((*optionRow)(nil)).Where("question_id = ?", question.ID).Exec(ctx); err != nil {
			return fmt.Errorf("delete options: %w", err)
		}
		return insertOptions(ctx, tx, question)
	})
}

func insertOptions(ctx context.Context, tx bun.Tx, question domain.Question) error {
	if len(question.Options) == 0 {
		return nil
	}
	options := make([]optionRow, 0, len(question.Options))
	for _, o := range question.Options {
		options = append(options, optionRow{
			ID: o.ID, QuestionID: question.ID, Text: o.Text, IsCorrect: o.IsCorrect, DisplayOrder: o.DisplayOrder,
		})
	}
	if _, err := tx.NewInsert().Model(&options).Exec(ctx); err != nil {
		return fmt.Errorf("insert options: %w", err)
	}
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	questions, err := s.selectQuestions(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	})
	if err != nil {
		return domain.Question{}, err
	}
	if len(questions) == 0 {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return questions[0], nil
}

func (s *Store) ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	return s.selectQuestions(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.QuizID != "" {
			q = q.Where("quiz_id = ?", filter.QuizID)
		}
		if filter.Type != "" {
			q = q.Where("question_type = ?", string(filter.Type))
		}
		return q
	})
}

// selectQuestions loads the matching questions, then their options in one query.
func (s *Store) selectQuestions(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.Question, error) {
	var rows []questionRow
	if err := where(s.db.NewSelect().Model(&rows)).OrderExpr("quiz_id ASC, display_order ASC, id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Question, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	var options []optionRow
	if err := s.db.NewSelect().Model(&options).
		Where("question_id IN (?)", bun.In(ids)).
		OrderExpr("question_id ASC, display_order ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	byQuestion := make(map[string][]domain.AnswerOption, len(rows))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o.toDomain())
	}
	for _, r := range rows {
		question := r.toDomain()
		question.Options = byQuestion[r.ID]
		if question.Options == nil {
			question.Options = []domain.AnswerOption{}
		}
		out = append(out, question)
	}
	return out, nil
}

// DeleteQuestion removes a question; its options go with it through the cascade.
func (s *Store) DeleteQuestion(ctx context.Context, id string) (string, error) {
	var quizID string
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row questionRow
		err := tx.NewSelect().Model(&row).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrQuestionNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model(&row).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		quizID = row.QuizID
		return nil
	})
	if err != nil {
		return "", err
	}
	return quizID, nil
}
