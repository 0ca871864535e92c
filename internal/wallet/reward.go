package wallet

import (
	"context"
	"fmt"

	"wallet-accounting-go/internal/database"
	"wallet-accounting-go/internal/metrics"
	"wallet-accounting-go/internal/models"
	"wallet-accounting-go/internal/store"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddEarn pays the onboarding reward for a quiz question out of the funder
// account. Each question pays once per account; repeat claims fail with
// store.ErrRewardAlreadyClaimed and write nothing.
func (w *Wallet) AddEarn(ctx context.Context, accountId, quizQuestionId string, rewardAmounts map[string]int64) (*models.RewardResult, error) {
	if w.rewards == nil {
		return nil, fmt.Errorf("rewards repository not configured")
	}
	amount, ok := rewardAmounts[quizQuestionId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuizQuestionId, quizQuestionId)
	}

	if _, err := w.accounts.GetAccountById(ctx, accountId); err != nil {
		return nil, err
	}

	// Recording the claim first makes the claim table the idempotency
	// gate; the ledger entry follows only for first claims.
	if err := w.rewards.Add(ctx, accountId, quizQuestionId); err != nil {
		return nil, err
	}

	funderId := w.config.FunderAccountId
	err := w.locks.WithLock(ctx, funderId, func() error {
		balance, err := w.journal.Balance(ctx, database.CustomerPath(funderId), store.CurrencyBTC)
		if err != nil {
			return err
		}
		if balance < amount {
			return fmt.Errorf("%w: funder balance %d, reward %d", ErrInsufficientBalance, balance, amount)
		}

		ratio, err := w.price.CurrentRatio(ctx)
		if err != nil {
			return fmt.Errorf("failed to get price ratio: %w", err)
		}

		entry := models.Entry{
			Memo: quizQuestionId,
			Metadata: models.EntryMetadata{
				Type:     store.TypeOnboardingEarn,
				Currency: store.CurrencyBTC,
				Hash:     uuid.New().String(),
				Sats:     amount,
				Cents:    ratio.CentsFromSats(amount),
			},
			Legs: []models.EntryLeg{
				{AccountPath: database.CustomerPath(funderId), Credit: amount},
				{AccountPath: database.CustomerPath(accountId), Debit: amount},
			},
		}
		_, err = w.journal.Commit(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RewardsTotal.Inc()
	zap.L().Info("Paid onboarding reward",
		zap.String("account_id", accountId),
		zap.String("quiz_question_id", quizQuestionId),
		zap.Int64("sats", amount))

	return &models.RewardResult{
		QuizQuestionId: quizQuestionId,
		EarnAmount:     btcutil.Amount(amount),
	}, nil
}
