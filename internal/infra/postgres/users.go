package postgres

import (
	"context"
	"database/sql"
	"errors"

	"quiz-platform-service/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	row := userFromDomain(user)
	_, err := s.db.NewInsert().Model(&row).Exec(ctx)
	if pgCode(err) == codeUniqueViolation {
		return domain.ErrEmailTaken
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *Store) findUser(ctx context.Context, where string, arg interface{}) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where(where, arg).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	row := userFromDomain(user)
	res, err := s.db.NewUpdate().Model(&row).
		Column("email", "full_name", "password_hash", "role", "is_active", "updated_at").
		WherePK().
		Exec(ctx)
	if pgCode(err) == codeUniqueViolation {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("created_at DESC, id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
