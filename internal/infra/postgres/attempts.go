package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/domain"
)

func (s *Store) CreateAttempt(ctx context.Context, attempt domain.Attempt) error {
	row := attemptFromDomain(attempt)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) LatestInProgressAttempt(ctx context.Context, userID, quizID string) (domain.Attempt, error) {
	var row attemptRow
	err := s.db.NewSelect().Model(&row).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Where("status = ?", string(domain.AttemptInProgress)).
		OrderExpr("started_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListAttempts(ctx context.Context, userID string) ([]domain.Attempt, error) {
	var rows []attemptRow
	if err := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).OrderExpr("started_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Attempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) ListAnswers(ctx context.Context, attemptID string) ([]domain.UserAnswer, error) {
	var rows []answerRow
	if err := s.db.NewSelect().Model(&rows).Where("attempt_id = ?", attemptID).OrderExpr("seq ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.UserAnswer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) GetProgress(ctx context.Context, userID, quizID string) (domain.Progress, error) {
	var row progressRow
	err := s.db.NewSelect().Model(&row).Where("user_id = ?", userID).Where("quiz_id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Progress{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Progress{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListProgress(ctx context.Context, userID string) ([]domain.Progress, error) {
	var rows []progressRow
	if err := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).OrderExpr("last_attempt_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Progress, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) GetCertificate(ctx context.Context, userID, quizID string) (domain.Certificate, error) {
	var row certificateRow
	err := s.db.NewSelect().Model(&row).Where("user_id = ?", userID).Where("quiz_id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	if err != nil {
		return domain.Certificate{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) CertificateByToken(ctx context.Context, token string) (domain.Certificate, error) {
	var row certificateRow
	err := s.db.NewSelect().Model(&row).Where("token = ?", token).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	if err != nil {
		return domain.Certificate{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListCertificates(ctx context.Context, userID string) ([]domain.Certificate, error) {
	var rows []certificateRow
	if err := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).OrderExpr("issued_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Certificate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// RunInTx runs fn in a read-committed transaction. The conditional completion update
// serializes concurrent submissions on the attempt row.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.AttemptTx) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &attemptTx{tx: tx})
	})
}

type attemptTx struct {
	tx bun.Tx
}

func (t *attemptTx) CompleteAttempt(ctx context.Context, attempt domain.Attempt) error {
	res, err := t.tx.NewUpdate().Model((*attemptRow)(nil)).
		Set("status = ?", string(domain.AttemptCompleted)).
		Set("correct_answers = ?", attempt.CorrectAnswers).
		Set("score = ?", attempt.Score).
		Set("completed_at = ?", attempt.CompletedAt).
		Where("id = ?", attempt.ID).
		Where("status = ?", string(domain.AttemptInProgress)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("complete attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete attempt: %w", err)
	}
	if n == 0 {
		return domain.ErrAttemptNotActive
	}
	return nil
}

func (t *attemptTx) InsertAnswers(ctx context.Context, answers []domain.UserAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	rows := make([]answerRow, 0, len(answers))
	for _, a := range answers {
		rows = append(rows, answerRow{
			ID: a.ID, AttemptID: a.AttemptID, QuestionID: a.QuestionID, SelectedOptions: a.SelectedOptions,
			IsCorrect: a.IsCorrect, PointsEarned: a.PointsEarned, AnsweredAt: a.AnsweredAt,
		})
	}
	_, err := t.tx.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func (t *attemptTx) UpsertProgress(ctx context.Context, userID, quizID string, score int, at time.Time) (domain.Progress, error) {
	row := progressRow{UserID: userID, QuizID: quizID, TotalAttempts: 1, BestScore: score, LastAttemptAt: at}
	_, err := t.tx.NewInsert().Model(&row).
		On("CONFLICT (user_id, quiz_id) DO UPDATE").
		Set("total_attempts = user_progress.total_attempts + 1").
		Set("best_score = GREATEST(user_progress.best_score, EXCLUDED.best_score)").
		Set("last_attempt_at = EXCLUDED.last_attempt_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Progress{}, err
	}
	return row.toDomain(), nil
}

func (t *attemptTx) UpsertCertificate(ctx context.Context, cert domain.Certificate) (domain.Certificate, error) {
	row := certificateFromDomain(cert)
	_, err := t.tx.NewInsert().Model(&row).
		On("CONFLICT (user_id, quiz_id) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("certificate_url = EXCLUDED.certificate_url").
		Set("score_achieved = EXCLUDED.score_achieved").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Certificate{}, err
	}
	return row.toDomain(), nil
}
