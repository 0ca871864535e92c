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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) GetAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, queryGetActiveAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.Id, &account.Name, &account.Email,
			&account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

func (s *Service) GetAccountById(ctx context.Context, accountId string) (*models.Account, error) {
	var account models.Account
	err := s.db.QueryRowContext(ctx, queryGetAccountById, accountId).
		Scan(&account.Id, &account.Name, &account.Email, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, accountId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (s *Service) CreateAccount(ctx context.Context, accountId, name, email string) (*models.Account, error) {
	if accountId == "" {
		accountId = uuid.New().String()
	}

	if _, err := s.db.ExecContext(ctx, queryInsertAccount, accountId, name, email); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	zap.L().Info("Account created",
		zap.String("account_id", accountId),
		zap.String("name", name))

	return s.GetAccountById(ctx, accountId)
}

// AppendReceiveAddress records one more on-chain address for the account.
func (s *Service) AppendReceiveAddress(ctx context.Context, accountId, address string) (*models.Address, error) {
	if address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}
	if _, err := s.GetAccountById(ctx, accountId); err != nil {
		return nil, err
	}

	addr := &models.Address{
		Id:        uuid.New().String(),
		AccountId: accountId,
		Address:   address,
	}
	if _, err := s.db.ExecContext(ctx, queryInsertAddress, addr.Id, accountId, address); err != nil {
		return nil, fmt.Errorf("failed to store receive address: %w", err)
	}

	zap.L().Info("Receive address stored",
		zap.String("account_id", accountId),
		zap.String("address", address))
	return addr, nil
}

// ReceiveAddresses returns the account's addresses oldest first, preserving
// provisioning order.
func (s *Service) ReceiveAddresses(ctx context.Context, accountId string) ([]models.Address, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAccountAddresses, accountId)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var addresses []models.Address
	for rows.Next() {
		var addr models.Address
		if err := rows.Scan(&addr.Id, &addr.AccountId, &addr.Address, &addr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, addr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}
	return addresses, nil
}

// FindAccountByAddress resolves the owner of an on-chain address. This is the
// on-us detection primitive: a hit means the destination is hosted here.
func (s *Service) FindAccountByAddress(ctx context.Context, address string) (*models.Account, error) {
	var account models.Account
	err := s.db.QueryRowContext(ctx, queryFindAccountByAddress, address).
		Scan(&account.Id, &account.Name, &account.Email, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", store.ErrAddressNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve address owner: %w", err)
	}
	return &account, nil
}
