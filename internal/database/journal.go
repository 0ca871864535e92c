package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"wallet-accounting-go/internal/models"
	"wallet-accounting-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Commit validates and atomically persists a multi-leg journal entry. Either
// every leg is written under one journal id or nothing is.
func (s *Service) Commit(ctx context.Context, entry models.Entry) (string, error) {
	if err := validateEntry(entry); err != nil {
		return "", err
	}

	payeeAddresses, err := json.Marshal(metadataAddresses(entry.Metadata))
	if err != nil {
		return "", fmt.Errorf("failed to encode payee addresses: %w", err)
	}

	journalId := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, leg := range entry.Legs {
		_, err := tx.ExecContext(ctx, queryInsertJournalLeg,
			uuid.New().String(), journalId, leg.AccountPath, entry.Metadata.Currency,
			leg.Debit, leg.Credit,
			entry.Metadata.Type, entry.Metadata.Pending, entry.Metadata.Hash,
			entry.Metadata.RelatedJournal, string(payeeAddresses),
			entry.Metadata.Sats, entry.Metadata.Cents,
			entry.Metadata.Fee, entry.Metadata.FeeCents,
			entry.Memo, now)
		if err != nil {
			return "", fmt.Errorf("failed to insert journal leg: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit journal entry: %w", err)
	}

	zap.L().Info("Journal entry committed",
		zap.String("journal_id", journalId),
		zap.String("type", entry.Metadata.Type),
		zap.String("currency", entry.Metadata.Currency),
		zap.String("hash", entry.Metadata.Hash),
		zap.Int("legs", len(entry.Legs)))

	return journalId, nil
}

// validateEntry enforces the zero-sum invariant before anything is written.
func validateEntry(entry models.Entry) error {
	if len(entry.Legs) < 2 {
		return fmt.Errorf("%w: entry needs at least two legs, got %d",
			store.ErrUnbalancedEntry, len(entry.Legs))
	}
	if entry.Metadata.Currency == "" {
		return fmt.Errorf("%w: entry currency is empty", store.ErrUnbalancedEntry)
	}

	var debits, credits int64
	for _, leg := range entry.Legs {
		if leg.AccountPath == "" {
			return fmt.Errorf("%w: leg has empty account path", store.ErrUnbalancedEntry)
		}
		if leg.Debit < 0 || leg.Credit < 0 {
			return fmt.Errorf("%w: leg amounts must be non-negative", store.ErrUnbalancedEntry)
		}
		if (leg.Debit == 0) == (leg.Credit == 0) {
			return fmt.Errorf("%w: leg must have exactly one of debit or credit",
				store.ErrUnbalancedEntry)
		}
		debits += leg.Debit
		credits += leg.Credit
	}

	if debits != credits {
		return fmt.Errorf("%w: debits %d != credits %d",
			store.ErrUnbalancedEntry, debits, credits)
	}
	return nil
}

func metadataAddresses(m models.EntryMetadata) []string {
	if m.PayeeAddresses == nil {
		return []string{}
	}
	return m.PayeeAddresses
}

// FindEntry is the idempotency lookup: has an entry with this (account path,
// type, hash) already been committed?
func (s *Service) FindEntry(ctx context.Context, q store.EntryQuery) (*models.JournalLine, bool, error) {
	line, err := s.scanLeg(s.db.QueryRowContext(ctx, queryFindJournalLeg,
		q.AccountPath, q.Type, q.Hash))
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find journal entry: %w", err)
	}
	return line, true, nil
}

// Balance derives the account's balance from its ledger legs.
func (s *Service) Balance(ctx context.Context, accountPath, currency string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, queryAccountBalance, accountPath, currency).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to derive balance for %s: %w", accountPath, err)
	}
	return balance, nil
}

// History returns the account's committed legs, newest first.
func (s *Service) History(ctx context.Context, accountPath string, limit, offset int) ([]models.JournalLine, error) {
	rows, err := s.db.QueryContext(ctx, queryAccountHistory, accountPath, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query account history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var lines []models.JournalLine
	for rows.Next() {
		line, err := s.scanLeg(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal leg: %w", err)
		}
		lines = append(lines, *line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal legs: %w", err)
	}
	return lines, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Service) scanLeg(row rowScanner) (*models.JournalLine, error) {
	var line models.JournalLine
	var pending bool
	var payeeAddresses string

	err := row.Scan(&line.JournalId, &line.AccountPath, &line.Metadata.Currency,
		&line.Debit, &line.Credit,
		&line.Metadata.Type, &pending, &line.Metadata.Hash,
		&line.Metadata.RelatedJournal, &payeeAddresses,
		&line.Metadata.Sats, &line.Metadata.Cents,
		&line.Metadata.Fee, &line.Metadata.FeeCents,
		&line.Memo, &line.CreatedAt)
	if err != nil {
		return nil, err
	}

	line.Metadata.Pending = pending
	if err := json.Unmarshal([]byte(payeeAddresses), &line.Metadata.PayeeAddresses); err != nil {
		return nil, fmt.Errorf("failed to decode payee addresses %q: %w", payeeAddresses, err)
	}
	return &line, nil
}
