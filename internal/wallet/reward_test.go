package wallet

import (
	"context"
	"errors"
	"testing"

	"wallet-accounting-go/internal/database"
	"wallet-accounting-go/internal/store"
)

var testRewards = map[string]int64{
	"whatIsBitcoin":     1,
	"sat":               2,
	"whereBitcoinExist": 5,
}

func TestAddEarn_PaysFromFunder(t *testing.T) {
	w, _, db, cleanup := setupWallet(t)
	defer cleanup()
	ctx := context.Background()
	createAccount(t, db, "funder")
	createAccount(t, db, "alice")
	fund(t, db, "funder", 1000)

	result, err := w.AddEarn(ctx, "alice", "sat", testRewards)
	if err != nil {
		t.Fatalf("AddEarn failed: %v", err)
	}
	if result.EarnAmount != 2 {
		t.Errorf("Expected reward of 2 sats, got %d", result.EarnAmount)
	}

	aliceBalance, _ := db.Balance(ctx, database.CustomerPath("alice"), store.CurrencyBTC)
	funderBalance, _ := db.Balance(ctx, database.CustomerPath("funder"), store.CurrencyBTC)
	if aliceBalance != 2 {
		t.Errorf("Expected alice balance 2, got %d", aliceBalance)
	}
	if funderBalance != 998 {
		t.Errorf("Expected funder balance 998, got %d", funderBalance)
	}
}

func TestAddEarn_SecondClaimRejected(t *testing.T) {
	w, _, db, cleanup := setupWallet(t)
	defer cleanup()
	ctx := context.Background()
	createAccount(t, db, "funder")
	createAccount(t, db, "alice")
	fund(t, db, "funder", 1000)

	if _, err := w.AddEarn(ctx, "alice", "sat", testRewards); err != nil {
		t.Fatalf("First AddEarn failed: %v", err)
	}
	_, err := w.AddEarn(ctx, "alice", "sat", testRewards)
	if !errors.Is(err, store.ErrRewardAlreadyClaimed) {
		t.Errorf("Expected ErrRewardAlreadyClaimed, got %v", err)
	}

	aliceBalance, _ := db.Balance(ctx, database.CustomerPath("alice"), store.CurrencyBTC)
	if aliceBalance != 2 {
		t.Errorf("Expected reward paid exactly once, balance %d", aliceBalance)
	}
}

func TestAddEarn_UnknownQuestionRejected(t *testing.T) {
	w, _, db, cleanup := setupWallet(t)
	defer cleanup()
	createAccount(t, db, "funder")
	createAccount(t, db, "alice")

	_, err := w.AddEarn(context.Background(), "alice", "notAQuestion", testRewards)
	if !errors.Is(err, ErrInvalidQuizQuestionId) {
		t.Errorf("Expected ErrInvalidQuizQuestionId, got %v", err)
	}
}

func TestAddEarn_FunderMustCoverReward(t *testing.T) {
	w, _, db, cleanup := setupWallet(t)
	defer cleanup()
	createAccount(t, db, "funder")
	createAccount(t, db, "alice")
	// Funder account exists but holds nothing.

	_, err := w.AddEarn(context.Background(), "alice", "whereBitcoinExist", testRewards)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Expected ErrInsufficientBalance, got %v", err)
	}
}
