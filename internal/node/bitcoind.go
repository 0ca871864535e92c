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

package node

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"wallet-accounting-go/internal/models"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"go.uber.org/zap"
)

// representativeTxVsize is the virtual size used to turn a feerate quote
// into an absolute fee. Close to a 2-in 2-out segwit spend, which is what
// the hot wallet produces most of the time.
const representativeTxVsize = 250

// defaultRPCTimeout bounds node RPCs when no timeout is configured.
const defaultRPCTimeout = 30 * time.Second

// Bitcoind implements Node against a bitcoind wallet over JSON-RPC.
type Bitcoind struct {
	client     *rpcclient.Client
	params     *chaincfg.Params
	rpcTimeout time.Duration
}

type BitcoindParams struct {
	Host       string
	User       string
	Pass       string
	Network    *chaincfg.Params
	RPCTimeout time.Duration
}

func NewBitcoind(params BitcoindParams) (*Bitcoind, error) {
	if params.Host == "" {
		return nil, fmt.Errorf("node rpc host is required")
	}
	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         params.Host,
		User:         params.User,
		Pass:         params.Pass,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create node rpc client: %w", err)
	}
	timeout := params.RPCTimeout
	if timeout <= 0 {
		timeout = defaultRPCTimeout
	}
	return &Bitcoind{client: client, params: params.Network, rpcTimeout: timeout}, nil
}

// call runs one RPC bounded by the caller's context and the configured
// timeout. The rpcclient API is synchronous, so the call runs in its own
// goroutine and is abandoned once the deadline passes.
func (b *Bitcoind) call(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, b.rpcTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bitcoind) CreateReceiveAddress(ctx context.Context) (string, error) {
	var address btcutil.Address
	err := b.call(ctx, func() (err error) {
		address, err = b.client.GetNewAddress("")
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to create receive address: %w", err)
	}
	return address.EncodeAddress(), nil
}

func (b *Bitcoind) EstimateFee(ctx context.Context, address string, amount btcutil.Amount) (btcutil.Amount, error) {
	var result *btcjson.EstimateSmartFeeResult
	err := b.call(ctx, func() (err error) {
		mode := btcjson.EstimateModeEconomical
		result, err = b.client.EstimateSmartFee(1, &mode)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate fee: %w", err)
	}
	if result.FeeRate == nil {
		return 0, fmt.Errorf("node returned no feerate: %v", result.Errors)
	}

	perKvB, err := btcutil.NewAmount(*result.FeeRate)
	if err != nil {
		return 0, fmt.Errorf("invalid feerate from node: %w", err)
	}
	fee := perKvB * representativeTxVsize / 1000
	zap.L().Debug("Estimated on-chain fee",
		zap.String("address", address),
		zap.Int64("amount", int64(amount)),
		zap.Int64("fee", int64(fee)))
	return fee, nil
}

func (b *Bitcoind) ChainBalance(ctx context.Context) (btcutil.Amount, error) {
	var balance btcutil.Amount
	err := b.call(ctx, func() (err error) {
		balance, err = b.client.GetBalance("*")
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get chain balance: %w", err)
	}
	return balance, nil
}

func (b *Bitcoind) SendToAddress(ctx context.Context, address string, amount btcutil.Amount) (string, error) {
	decoded, err := btcutil.DecodeAddress(address, b.params)
	if err != nil {
		return "", fmt.Errorf("invalid destination address %s: %w", address, err)
	}
	var hash *chainhash.Hash
	err = b.call(ctx, func() (err error) {
		hash, err = b.client.SendToAddress(decoded, amount)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to send to address: %w", err)
	}
	return hash.String(), nil
}

func (b *Bitcoind) ChainHeight(ctx context.Context) (int32, error) {
	var height int64
	err := b.call(ctx, func() (err error) {
		height, err = b.client.GetBlockCount()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get chain height: %w", err)
	}
	return int32(height), nil
}

func (b *Bitcoind) IncomingTransactions(ctx context.Context, lookBackBlocks int32) ([]models.SubmittedTransaction, error) {
	height, err := b.ChainHeight(ctx)
	if err != nil {
		return nil, err
	}

	// Never probe below genesis on a young chain.
	from := int64(height) - int64(lookBackBlocks)
	if from < 0 {
		from = 0
	}
	var fromHash *chainhash.Hash
	err = b.call(ctx, func() (err error) {
		fromHash, err = b.client.GetBlockHash(from)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get look-back block hash: %w", err)
	}

	var listing *btcjson.ListSinceBlockResult
	err = b.call(ctx, func() (err error) {
		listing, err = b.client.ListSinceBlock(fromHash)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	// listsinceblock reports one row per owned output; fold the rows back
	// into whole transactions.
	grouped := make(map[string]*models.SubmittedTransaction)
	var order []string
	for _, item := range listing.Transactions {
		if item.Category != "receive" {
			continue
		}
		tx, ok := grouped[item.TxID]
		if !ok {
			tx = &models.SubmittedTransaction{
				Id:            item.TxID,
				Confirmations: int32(item.Confirmations),
				CreatedAt:     time.Unix(item.Time, 0),
			}
			grouped[item.TxID] = tx
			order = append(order, item.TxID)
		}
		amount, err := btcutil.NewAmount(item.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in listing for %s: %w", item.TxID, err)
		}
		tx.Tokens += amount
		if item.Address != "" {
			tx.OutputAddresses = append(tx.OutputAddresses, item.Address)
		}
	}

	txs := make([]models.SubmittedTransaction, 0, len(order))
	for _, id := range order {
		tx := grouped[id]
		rawTx, err := b.rawTransaction(ctx, id)
		if err != nil {
			return nil, err
		}
		tx.RawTx = rawTx
		txs = append(txs, *tx)
	}

	// Oldest first so reconciliation credits arrive in chain order.
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
	return txs, nil
}

func (b *Bitcoind) OutgoingTransaction(ctx context.Context, id string) (*models.SubmittedTransaction, error) {
	hash, err := chainhash.NewHashFromStr(id)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %s: %w", id, err)
	}
	var result *btcjson.GetTransactionResult
	err = b.call(ctx, func() (err error) {
		result, err = b.client.GetTransaction(hash)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}

	amount, err := btcutil.NewAmount(result.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount for %s: %w", id, err)
	}
	fee, err := btcutil.NewAmount(result.Fee)
	if err != nil {
		return nil, fmt.Errorf("invalid fee for %s: %w", id, err)
	}

	tx := &models.SubmittedTransaction{
		Id:            result.TxID,
		Confirmations: int32(result.Confirmations),
		Outgoing:      true,
		CreatedAt:     time.Unix(result.Time, 0),
	}
	// Wallet reports sends as negative values.
	if amount < 0 {
		amount = -amount
	}
	if fee < 0 {
		fee = -fee
	}
	tx.Tokens = amount
	tx.Fee = fee
	for _, detail := range result.Details {
		if detail.Address != "" {
			tx.OutputAddresses = append(tx.OutputAddresses, detail.Address)
		}
	}
	if result.Hex != "" {
		rawTx, err := hex.DecodeString(result.Hex)
		if err != nil {
			return nil, fmt.Errorf("invalid raw transaction for %s: %w", id, err)
		}
		tx.RawTx = rawTx
	}
	return tx, nil
}

// recoveryScanDepth bounds how far back FindOutgoingByAddress searches the
// wallet's transaction list.
const recoveryScanDepth = 100

func (b *Bitcoind) FindOutgoingByAddress(ctx context.Context, address string, amount btcutil.Amount) (*models.SubmittedTransaction, error) {
	var listing []btcjson.ListTransactionsResult
	err := b.call(ctx, func() (err error) {
		listing, err = b.client.ListTransactionsCountFrom("*", recoveryScanDepth, 0)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	for _, item := range listing {
		if item.Category != "send" || item.Address != address {
			continue
		}
		sent, err := btcutil.NewAmount(item.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in listing for %s: %w", item.TxID, err)
		}
		if sent < 0 {
			sent = -sent
		}
		if sent != amount {
			continue
		}
		return b.OutgoingTransaction(ctx, item.TxID)
	}
	return nil, fmt.Errorf("%w: no send of %d to %s", ErrTransactionNotFound, int64(amount), address)
}

func (b *Bitcoind) rawTransaction(ctx context.Context, id string) ([]byte, error) {
	hash, err := chainhash.NewHashFromStr(id)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %s: %w", id, err)
	}
	var result *btcjson.GetTransactionResult
	err = b.call(ctx, func() (err error) {
		result, err = b.client.GetTransaction(hash)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", id, err)
	}
	rawTx, err := hex.DecodeString(result.Hex)
	if err != nil {
		return nil, fmt.Errorf("invalid raw transaction for %s: %w", id, err)
	}
	return rawTx, nil
}

var _ Node = (*Bitcoind)(nil)
