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

// Package wallet holds the accounting engine: on-chain payments, receipt
// reconciliation, fee reimbursement and onboarding rewards, all settled as
// double-entry journal entries.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"wallet-accounting-go/internal/database"
	"wallet-accounting-go/internal/lock"
	"wallet-accounting-go/internal/models"
	"wallet-accounting-go/internal/node"
	"wallet-accounting-go/internal/onchain"
	"wallet-accounting-go/internal/pricing"
	"wallet-accounting-go/internal/store"

	"github.com/btcsuite/btcd/chaincfg"
)

var (
	// ErrInsufficientBalance reports a payment larger than the account's
	// ledger balance plus the anticipated fee.
	ErrInsufficientBalance = errors.New("insufficient account balance")

	// ErrSelfPayment reports a payment to one of the sender's own addresses.
	ErrSelfPayment = errors.New("cannot pay to own address")

	// ErrInsufficientNodeLiquidity reports that the hot wallet cannot cover
	// the payment. The account balance is fine; the node is not.
	ErrInsufficientNodeLiquidity = errors.New("node has insufficient on-chain funds")

	// ErrInvalidAmount reports a zero or negative payment amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidQuizQuestionId reports a reward claim for an unknown quiz
	// question.
	ErrInvalidQuizQuestionId = errors.New("unknown quiz question id")

	// ErrAttributionExceedsTotal reports a transaction whose outputs to the
	// account sum to more than the transaction moved in total.
	ErrAttributionExceedsTotal = errors.New("attributed value exceeds transaction total")
)

// PriceSource quotes the sats/cents ratio used to annotate BTC entries with
// their display-currency value.
type PriceSource interface {
	CurrentRatio(ctx context.Context) (pricing.PriceRatio, error)
}

// FixedPriceSource returns the same ratio on every call. Used where the
// deployment has no live price feed.
type FixedPriceSource struct {
	Ratio pricing.PriceRatio
}

func (f FixedPriceSource) CurrentRatio(ctx context.Context) (pricing.PriceRatio, error) {
	return f.Ratio, nil
}

// Wallet coordinates the journal, the account directory and the node into
// the settlement operations the service exposes.
type Wallet struct {
	journal  store.Journal
	accounts store.AccountDirectory
	rewards  store.RewardsRepository
	node     node.Node
	price    PriceSource
	locks    *lock.Registry
	params   *chaincfg.Params
	config   models.WalletConfig
}

type WalletParams struct {
	Journal  store.Journal
	Accounts store.AccountDirectory
	Rewards  store.RewardsRepository
	Node     node.Node
	Price    PriceSource
	Config   models.WalletConfig
}

func NewWallet(params WalletParams) (*Wallet, error) {
	if params.Journal == nil || params.Accounts == nil || params.Node == nil {
		return nil, fmt.Errorf("journal, accounts and node are required")
	}
	if params.Price == nil {
		return nil, fmt.Errorf("price source is required")
	}
	chainParams, err := onchain.NetworkParams(params.Config.Network)
	if err != nil {
		return nil, err
	}
	return &Wallet{
		journal:  params.Journal,
		accounts: params.Accounts,
		rewards:  params.Rewards,
		node:     params.Node,
		price:    params.Price,
		locks:    lock.NewRegistry(),
		params:   chainParams,
		config:   params.Config,
	}, nil
}

// Balance returns the account's ledger balance in satoshis.
func (w *Wallet) Balance(ctx context.Context, accountId string) (int64, error) {
	return w.journal.Balance(ctx, database.CustomerPath(accountId), store.CurrencyBTC)
}

// History returns the account's committed ledger legs, newest first.
func (w *Wallet) History(ctx context.Context, accountId string, limit, offset int) ([]models.JournalLine, error) {
	return w.journal.History(ctx, database.CustomerPath(accountId), limit, offset)
}

// CreateReceiveAddress provisions a fresh node address for the account and
// records it in the directory.
func (w *Wallet) CreateReceiveAddress(ctx context.Context, accountId string) (string, error) {
	if _, err := w.accounts.GetAccountById(ctx, accountId); err != nil {
		return "", err
	}
	address, err := w.node.CreateReceiveAddress(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to provision address: %w", err)
	}
	if _, err := w.accounts.AppendReceiveAddress(ctx, accountId, address); err != nil {
		return "", err
	}
	return address, nil
}

// LastReceiveAddress returns the account's most recently provisioned
// address, provisioning one first if the account has none yet.
func (w *Wallet) LastReceiveAddress(ctx context.Context, accountId string) (string, error) {
	records, err := w.accounts.ReceiveAddresses(ctx, accountId)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return w.CreateReceiveAddress(ctx, accountId)
	}
	return records[len(records)-1].Address, nil
}

func (w *Wallet) accountAddresses(ctx context.Context, accountId string) ([]string, error) {
	records, err := w.accounts.ReceiveAddresses(ctx, accountId)
	if err != nil {
		return nil, err
	}
	addresses := make([]string, len(records))
	for i, record := range records {
		addresses[i] = record.Address
	}
	return addresses, nil
}
