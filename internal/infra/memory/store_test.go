package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/domain"
)

func TestRunInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	started := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := store.CreateAttempt(ctx, domain.Attempt{ID: "a1", UserID: "u1", QuizID: "quiz-1", Status: domain.AttemptInProgress, StartedAt: started}); err != nil {
		t.Fatalf("create attempt: %v", err)
	}

	boom := errors.New("boom")
	err := store.RunInTx(ctx, func(ctx context.Context, tx app.AttemptTx) error {
		score := 50
		if err := tx.CompleteAttempt(ctx, domain.Attempt{ID: "a1", Score: &score}); err != nil {
			return err
		}
		if err := tx.InsertAnswers(ctx, []domain.UserAnswer{{ID: "ans-1", AttemptID: "a1", QuestionID: "q1"}}); err != nil {
			return err
		}
		if _, err := tx.UpsertProgress(ctx, "u1", "quiz-1", 50, started); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected tx error, got %v", err)
	}

	attempt, err := store.LatestInProgressAttempt(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("expected attempt still in progress: %v", err)
	}
	if attempt.ID != "a1" {
		t.Fatalf("unexpected attempt %+v", attempt)
	}
	if answers, _ := store.ListAnswers(ctx, "a1"); len(answers) != 0 {
		t.Fatalf("expected no answers after rollback, got %d", len(answers))
	}
	if _, err := store.GetProgress(ctx, "u1", "quiz-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no progress after rollback, got %v", err)
	}
}

func TestCompleteAttemptOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "a1", UserID: "u1", QuizID: "quiz-1", Status: domain.AttemptInProgress})

	complete := func() error {
		return store.RunInTx(ctx, func(ctx context.Context, tx app.AttemptTx) error {
			return tx.CompleteAttempt(ctx, domain.Attempt{ID: "a1"})
		})
	}
	if err := complete(); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if err := complete(); !errors.Is(err, domain.ErrAttemptNotActive) {
		t.Fatalf("expected second complete to be rejected, got %v", err)
	}
}

func TestLatestInProgressAttemptPrefersNewest(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "old", UserID: "u1", QuizID: "quiz-1", Status: domain.AttemptInProgress, StartedAt: base})
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "new", UserID: "u1", QuizID: "quiz-1", Status: domain.AttemptInProgress, StartedAt: base.Add(time.Minute)})
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "done", UserID: "u1", QuizID: "quiz-1", Status: domain.AttemptCompleted, StartedAt: base.Add(time.Hour)})
	_ = store.CreateAttempt(ctx, domain.Attempt{ID: "other", UserID: "u2", QuizID: "quiz-1", Status: domain.AttemptInProgress, StartedAt: base.Add(time.Hour)})

	attempt, err := store.LatestInProgressAttempt(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if attempt.ID != "new" {
		t.Fatalf("expected newest in-progress attempt, got %s", attempt.ID)
	}

	if _, err := store.LatestInProgressAttempt(ctx, "u3", "quiz-1"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found, got %v", err)
	}
}

func TestUpsertProgressAndCertificate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, score := range []int{80, 40} {
		err := store.RunInTx(ctx, func(ctx context.Context, tx app.AttemptTx) error {
			_, err := tx.UpsertProgress(ctx, "u1", "quiz-1", score, at)
			return err
		})
		if err != nil {
			t.Fatalf("upsert progress: %v", err)
		}
	}
	progress, err := store.GetProgress(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if progress.TotalAttempts != 2 || progress.BestScore != 80 {
		t.Fatalf("unexpected progress %+v", progress)
	}

	first := domain.Certificate{ID: "c1", UserID: "u1", QuizID: "quiz-1", Token: "t1", CertificateURL: "/certificates/t1", ScoreAchieved: 95, IssuedAt: at}
	second := domain.Certificate{ID: "c2", UserID: "u1", QuizID: "quiz-1", Token: "t2", CertificateURL: "/certificates/t2", ScoreAchieved: 75, IssuedAt: at.Add(time.Hour)}
	for _, cert := range []domain.Certificate{first, second} {
		err := store.RunInTx(ctx, func(ctx context.Context, tx app.AttemptTx) error {
			_, err := tx.UpsertCertificate(ctx, cert)
			return err
		})
		if err != nil {
			t.Fatalf("upsert certificate: %v", err)
		}
	}
	cert, err := store.GetCertificate(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("get certificate: %v", err)
	}
	if cert.ID != "c1" || !cert.IssuedAt.Equal(at) {
		t.Fatalf("expected identity and issue date kept, got %+v", cert)
	}
	if cert.ScoreAchieved != 75 || cert.Token != "t2" {
		t.Fatalf("expected latest score and token, got %+v", cert)
	}
	if _, err := store.CertificateByToken(ctx, "t1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected old token retired, got %v", err)
	}
}
