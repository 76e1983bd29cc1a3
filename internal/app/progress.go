package app

import (
	"context"
	"fmt"
	"time"

	"quiz-platform-service/internal/domain"
)

// recordCompletion applies the progress and certificate side effects of a completed
// attempt. It must run inside the transaction that completed the attempt.
//
// Progress keeps the best score; the certificate always reflects the latest passing
// attempt, so a lower passing score overwrites a higher one. A failing attempt never
// touches an existing certificate.
func (s *AttemptService) recordCompletion(ctx context.Context, tx AttemptTx, attempt domain.Attempt, passingScore int, at time.Time) (*domain.Certificate, error) {
	score := 0
	if attempt.Score != nil {
		score = *attempt.Score
	}

	if _, err := tx.UpsertProgress(ctx, attempt.UserID, attempt.QuizID, score, at); err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}

	if !Passed(score, passingScore) {
		return nil, nil
	}

	cert, err := tx.UpsertCertificate(ctx, s.certificates.Mint(attempt.UserID, attempt.QuizID, score, at))
	if err != nil {
		return nil, fmt.Errorf("upsert certificate: %w", err)
	}
	return &cert, nil
}
