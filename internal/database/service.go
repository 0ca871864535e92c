/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"

	"wallet-accounting-go/internal/models"
	"wallet-accounting-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time checks: *Service must satisfy the store contracts.
var (
	_ store.Journal           = (*Service)(nil)
	_ store.AccountDirectory  = (*Service)(nil)
	_ store.RewardsRepository = (*Service)(nil)
)

// Account paths used on ledger legs. Customer balances live under their own
// path; the node reserve path is the service-side counterpart of every
// on-chain movement.
const nodeAccountingPath = "Assets:Reserve:Node"

// CustomerPath returns the ledger account path for a customer account.
func CustomerPath(accountId string) string {
	return "Liabilities:Customers:" + accountId
}

// NodeAccountingPath returns the service's node reserve account path.
func NodeAccountingPath() string {
	return nodeAccountingPath
}

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Create accounts table
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
	CREATE INDEX IF NOT EXISTS idx_accounts_active ON accounts(active);

	-- Create addresses table to store provisioned receive addresses.
	-- Append-only: rows are never updated or deleted.
	CREATE TABLE IF NOT EXISTS addresses (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		address TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_addresses_account ON addresses(account_id);
	CREATE INDEX IF NOT EXISTS idx_addresses_address ON addresses(address);
	CREATE INDEX IF NOT EXISTS idx_addresses_created_at ON addresses(created_at);

	-- Journal legs: the double-entry ledger. Every journal id groups the
	-- legs of one atomic entry; debits and credits balance per journal.
	CREATE TABLE IF NOT EXISTS journal_legs (
		id TEXT PRIMARY KEY,
		journal_id TEXT NOT NULL,
		account_path TEXT NOT NULL,
		currency TEXT NOT NULL,
		debit INTEGER NOT NULL DEFAULT 0,
		credit INTEGER NOT NULL DEFAULT 0,
		type TEXT NOT NULL,
		pending BOOLEAN NOT NULL DEFAULT 0,
		hash TEXT NOT NULL DEFAULT '',
		related_journal TEXT NOT NULL DEFAULT '',
		payee_addresses TEXT NOT NULL DEFAULT '[]',
		sats INTEGER NOT NULL DEFAULT 0,
		cents INTEGER NOT NULL DEFAULT 0,
		fee INTEGER NOT NULL DEFAULT 0,
		fee_cents INTEGER NOT NULL DEFAULT 0,
		memo TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_legs_journal ON journal_legs(journal_id);
	CREATE INDEX IF NOT EXISTS idx_legs_account_currency ON journal_legs(account_path, currency);
	-- Receipt idempotency lookups are keyed by (account_path, type, hash).
	CREATE INDEX IF NOT EXISTS idx_legs_account_type_hash ON journal_legs(account_path, type, hash);

	-- One-time onboarding reward claims.
	CREATE TABLE IF NOT EXISTS reward_claims (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		quiz_question_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(account_id, quiz_question_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}
