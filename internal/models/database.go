package models

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// Account represents a customer account hosted by the service. Its balance is
// never stored here: it is derived from the ledger legs on the account's path.
type Account struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Address represents one on-chain receive address owned by an account.
// Addresses are append-only, ordered by creation; the newest one is the
// account's current receive address.
type Address struct {
	Id        string    `db:"id"`
	AccountId string    `db:"account_id"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

// EntryLeg is one (account-path, signed amount) component of a journal entry.
// Exactly one of Debit/Credit is non-zero. Amounts are integer units of the
// entry currency (satoshis for BTC, cents for the display currency).
type EntryLeg struct {
	AccountPath string
	Debit       int64
	Credit      int64
}

// EntryMetadata is attached to every leg of a committed entry.
type EntryMetadata struct {
	Type           string
	Currency       string
	Pending        bool
	Hash           string
	RelatedJournal string
	PayeeAddresses []string
	Sats           int64
	Cents          int64
	Fee            int64
	FeeCents       int64
}

// Entry is an uncommitted multi-leg journal entry. The legs must sum to zero
// (total debits == total credits) or the ledger rejects the whole entry.
type Entry struct {
	Memo     string
	Metadata EntryMetadata
	Legs     []EntryLeg
}

// JournalLine is one committed leg as read back from the ledger.
type JournalLine struct {
	JournalId   string
	AccountPath string
	Debit       int64
	Credit      int64
	Memo        string
	Metadata    EntryMetadata
	CreatedAt   time.Time
}

// SubmittedTransaction is a node-observed on-chain transaction. It is sourced
// live from the node and never persisted; only the resulting ledger entry is.
type SubmittedTransaction struct {
	Id              string
	Confirmations   int32
	OutputAddresses []string
	Tokens          btcutil.Amount
	Fee             btcutil.Amount
	RawTx           []byte
	Outgoing        bool
	CreatedAt       time.Time
}

// Vout is one decoded transaction output: the attribution unit for credits.
type Vout struct {
	N         int
	Value     btcutil.Amount
	Addresses []string
}
