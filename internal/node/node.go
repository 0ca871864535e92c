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

// Package node abstracts the hot wallet backing the ledger. The accounting
// engine only ever talks to this interface; the bitcoind implementation
// lives alongside it and test doubles stand in for it elsewhere.
package node

import (
	"context"
	"errors"

	"wallet-accounting-go/internal/models"

	"github.com/btcsuite/btcd/btcutil"
)

var ErrTransactionNotFound = errors.New("transaction not found in node wallet")

type Node interface {
	// CreateReceiveAddress asks the wallet for a fresh deposit address.
	CreateReceiveAddress(ctx context.Context) (string, error)

	// EstimateFee quotes the fee for paying amount to address at current
	// network conditions. The quote is advisory; the authoritative fee is
	// read back from the wallet after the send.
	EstimateFee(ctx context.Context, address string, amount btcutil.Amount) (btcutil.Amount, error)

	// ChainBalance reports the confirmed funds the wallet controls.
	ChainBalance(ctx context.Context) (btcutil.Amount, error)

	// SendToAddress broadcasts a payment and returns its transaction id.
	SendToAddress(ctx context.Context, address string, amount btcutil.Amount) (string, error)

	// IncomingTransactions lists receives whose containing block is within
	// lookBackBlocks of the tip, plus anything still unconfirmed.
	IncomingTransactions(ctx context.Context, lookBackBlocks int32) ([]models.SubmittedTransaction, error)

	// OutgoingTransaction fetches a wallet-originated transaction by id,
	// including the fee the wallet actually paid.
	OutgoingTransaction(ctx context.Context, id string) (*models.SubmittedTransaction, error)

	// FindOutgoingByAddress searches recent wallet sends for a payment of
	// amount to address. Used to resolve a broadcast whose RPC call failed
	// without reporting an outcome. Returns ErrTransactionNotFound when no
	// matching send exists.
	FindOutgoingByAddress(ctx context.Context, address string, amount btcutil.Amount) (*models.SubmittedTransaction, error)

	// ChainHeight returns the current block height of the node.
	ChainHeight(ctx context.Context) (int32, error)
}
