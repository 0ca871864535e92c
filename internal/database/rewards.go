package database

import (
	"context"
	"database/sql"
	"fmt"

	"wallet-accounting-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Add records a one-time onboarding reward claim. A repeat claim for the same
// (account, quiz question) returns ErrRewardAlreadyClaimed.
func (s *Service) Add(ctx context.Context, accountId, quizQuestionId string) error {
	var existingId string
	err := s.db.QueryRowContext(ctx, queryCheckRewardClaim, accountId, quizQuestionId).
		Scan(&existingId)
	if err == nil {
		zap.L().Warn("Duplicate reward claim detected, skipping",
			zap.String("account_id", accountId),
			zap.String("quiz_question_id", quizQuestionId))
		return fmt.Errorf("%w: %s/%s", store.ErrRewardAlreadyClaimed, accountId, quizQuestionId)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check reward claim: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, queryInsertRewardClaim,
		uuid.New().String(), accountId, quizQuestionId); err != nil {
		return fmt.Errorf("failed to record reward claim: %w", err)
	}
	return nil
}
