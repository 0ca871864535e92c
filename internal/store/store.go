package store

import (
	"context"
	"errors"

	"wallet-accounting-go/internal/models"
)

// Sentinel errors shared across backend implementations and the engine.
var (
	// ErrUnbalancedEntry reports an entry whose legs do not sum to zero.
	// Nothing is persisted when it is returned.
	ErrUnbalancedEntry = errors.New("entry legs do not balance")

	// ErrAccountNotFound reports a lookup for an unknown account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAddressNotFound reports that no account owns the given address.
	ErrAddressNotFound = errors.New("no account found for address")

	// ErrRewardAlreadyClaimed reports a second claim of a one-time reward.
	ErrRewardAlreadyClaimed = errors.New("reward already claimed")
)

// EntryQuery keys the idempotency lookup for committed entries.
type EntryQuery struct {
	AccountPath string
	Type        string
	Hash        string
}

// Journal is the append-only double-entry ledger. Commit is atomic: either
// every leg of the entry is persisted or none is.
type Journal interface {
	// Commit validates the entry (zero-sum per currency) and persists all
	// legs under a fresh journal id. Returns the journal id.
	Commit(ctx context.Context, entry models.Entry) (string, error)

	// FindEntry reports whether an entry matching the query exists, and
	// returns its first matching leg when it does.
	FindEntry(ctx context.Context, q EntryQuery) (*models.JournalLine, bool, error)

	// Balance returns SUM(debit) - SUM(credit) over the account path's legs
	// in the given currency.
	Balance(ctx context.Context, accountPath, currency string) (int64, error)

	// History returns the account path's committed legs, newest first.
	History(ctx context.Context, accountPath string, limit, offset int) ([]models.JournalLine, error)
}

// AccountDirectory resolves accounts and their on-chain receive addresses.
type AccountDirectory interface {
	GetAccounts(ctx context.Context) ([]models.Account, error)
	GetAccountById(ctx context.Context, accountId string) (*models.Account, error)
	CreateAccount(ctx context.Context, accountId, name, email string) (*models.Account, error)

	// AppendReceiveAddress records a newly provisioned address for the
	// account. The address list is append-only.
	AppendReceiveAddress(ctx context.Context, accountId, address string) (*models.Address, error)

	// ReceiveAddresses returns the account's addresses oldest first.
	ReceiveAddresses(ctx context.Context, accountId string) ([]models.Address, error)

	// FindAccountByAddress resolves the owner of an on-chain address, or
	// ErrAddressNotFound. This is the "on-us" detection primitive.
	FindAccountByAddress(ctx context.Context, address string) (*models.Account, error)
}

// RewardsRepository enforces one-time claims of onboarding rewards.
type RewardsRepository interface {
	// Add records the claim, or ErrRewardAlreadyClaimed on a repeat.
	Add(ctx context.Context, accountId, quizQuestionId string) error
}
