package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/domain"
)

func TestUserHistoryAndCertificateVerification(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addCapitalQuiz(t)
	_ = env.store.CreateUser(ctx, domain.User{ID: "u1", Email: "u1@example.com", FullName: "Grace Hopper", Role: domain.RoleUser, IsActive: true})
	users := app.NewUserService(env.store, env.store, env.store)

	_, _ = env.service.Start(ctx, "u1", "capitals")
	result, err := env.service.Submit(ctx, "u1", "capitals", []domain.AnswerSubmission{{QuestionID: "capital", SelectedOptions: []string{"paris"}}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	attempts, _ := users.Attempts(ctx, "u1")
	progress, _ := users.Progress(ctx, "u1")
	certs, _ := users.Certificates(ctx, "u1")
	if len(attempts) != 1 || len(progress) != 1 || len(certs) != 1 {
		t.Fatalf("expected one of each, got %d attempts %d progress %d certificates", len(attempts), len(progress), len(certs))
	}

	token := (*result.CertificateURL)[strings.LastIndex(*result.CertificateURL, "/")+1:]
	view, err := users.VerifyCertificate(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if view.HolderName != "Grace Hopper" || view.QuizTitle != "Capitals" || view.ScoreAchieved != 100 {
		t.Fatalf("unexpected certificate view %+v", view)
	}

	if _, err := users.VerifyCertificate(ctx, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProfileAndListUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = env.store.CreateUser(ctx, domain.User{ID: "u1", Email: "u1@example.com", FullName: "Ada", Role: domain.RoleUser, IsActive: true, CreatedAt: older, UpdatedAt: older})
	_ = env.store.CreateUser(ctx, domain.User{ID: "u2", Email: "u2@example.com", FullName: "Alan", Role: domain.RoleUser, IsActive: true, CreatedAt: older.Add(time.Hour)})
	users := app.NewUserService(env.store, env.store, env.store)

	updated, err := users.UpdateProfile(ctx, "u1", "  Ada Lovelace ")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FullName != "Ada Lovelace" || !updated.UpdatedAt.After(older) || updated.Email != "u1@example.com" {
		t.Fatalf("unexpected profile %+v", updated)
	}
	profile, _ := users.Profile(ctx, "u1")
	if profile.FullName != "Ada Lovelace" {
		t.Fatalf("expected stored name updated, got %q", profile.FullName)
	}

	if _, err := users.UpdateProfile(ctx, "u1", "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected blank name rejected, got %v", err)
	}
	if _, err := users.UpdateProfile(ctx, "missing", "Nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected missing user, got %v", err)
	}

	all, err := users.ListUsers(ctx)
	if err != nil || len(all) != 2 || all[0].ID != "u2" {
		t.Fatalf("expected newest user first, got %+v (%v)", all, err)
	}
}
