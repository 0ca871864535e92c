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

package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-accounting-go/internal/database"
	"wallet-accounting-go/internal/metrics"
	"wallet-accounting-go/internal/models"
	"wallet-accounting-go/internal/node"
	"wallet-accounting-go/internal/store"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PayOnChainParams struct {
	AccountId string
	Address   string
	Amount    btcutil.Amount
	Memo      string
}

// PayOnChain settles a payment from the account to an on-chain address.
//
// If the destination belongs to another account on this ledger the payment
// never touches the chain: it settles as an internal transfer with zero fee.
// Otherwise the node broadcasts it, and the entry is committed only after
// the broadcast succeeded, with the fee the node actually paid.
func (w *Wallet) PayOnChain(ctx context.Context, params PayOnChainParams) (*models.PaymentResult, error) {
	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	payer, err := w.accounts.GetAccountById(ctx, params.AccountId)
	if err != nil {
		return nil, err
	}

	// The payer must cover the amount before anything else is consulted. A
	// user balance shortfall is a user error, not an operational alarm; it
	// must never reach the node-liquidity gate. Fees are settled later under
	// the account lock, where amount plus fee is re-checked.
	balance, err := w.journal.Balance(ctx, database.CustomerPath(payer.Id), store.CurrencyBTC)
	if err != nil {
		return nil, err
	}
	if balance < int64(params.Amount) {
		return nil, fmt.Errorf("%w: balance %d, need %d", ErrInsufficientBalance, balance, int64(params.Amount))
	}

	owner, err := w.accounts.FindAccountByAddress(ctx, params.Address)
	switch {
	case err == nil && owner.Id == payer.Id:
		return nil, ErrSelfPayment
	case err == nil:
		return w.payOnUs(ctx, payer.Id, owner.Id, params)
	case errors.Is(err, store.ErrAddressNotFound):
		return w.payOffPlatform(ctx, payer.Id, params)
	default:
		return nil, err
	}
}

// payOnUs settles a payment between two accounts of this ledger. No
// transaction is broadcast and no fee is charged.
func (w *Wallet) payOnUs(ctx context.Context, payerId, recipientId string, params PayOnChainParams) (*models.PaymentResult, error) {
	ratio, err := w.price.CurrentRatio(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get price ratio: %w", err)
	}

	sats := int64(params.Amount)
	hash := uuid.New().String()

	err = w.locks.WithLock(ctx, payerId, func() error {
		balance, err := w.journal.Balance(ctx, database.CustomerPath(payerId), store.CurrencyBTC)
		if err != nil {
			return err
		}
		if balance < sats {
			return fmt.Errorf("%w: balance %d, need %d", ErrInsufficientBalance, balance, sats)
		}

		entry := models.Entry{
			Memo: params.Memo,
			Metadata: models.EntryMetadata{
				Type:           store.TypeOnChainOnUs,
				Currency:       store.CurrencyBTC,
				Hash:           hash,
				PayeeAddresses: []string{params.Address},
				Sats:           sats,
				Cents:          ratio.CentsFromSats(sats),
			},
			Legs: []models.EntryLeg{
				{AccountPath: database.CustomerPath(payerId), Credit: sats},
				{AccountPath: database.CustomerPath(recipientId), Debit: sats},
			},
		}
		_, err = w.journal.Commit(ctx, entry)
		return err
	})
	if err != nil {
		metrics.PaymentFailuresTotal.Inc()
		return nil, err
	}

	metrics.PaymentsTotal.WithLabelValues("on_us").Inc()
	zap.L().Info("Settled on-us payment",
		zap.String("payer", payerId),
		zap.String("recipient", recipientId),
		zap.Int64("sats", sats))

	return &models.PaymentResult{
		Success: true,
		OnUs:    true,
		Hash:    hash,
		Sats:    params.Amount,
	}, nil
}

// payOffPlatform broadcasts through the node. The ledger entry carries the
// fee the node reports for the broadcast transaction, not the estimate; the
// estimate only gates the balance check.
func (w *Wallet) payOffPlatform(ctx context.Context, payerId string, params PayOnChainParams) (*models.PaymentResult, error) {
	ratio, err := w.price.CurrentRatio(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get price ratio: %w", err)
	}

	estimatedFee, err := w.node.EstimateFee(ctx, params.Address, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate fee: %w", err)
	}

	nodeBalance, err := w.node.ChainBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check node balance: %w", err)
	}
	if nodeBalance < params.Amount+estimatedFee {
		metrics.LiquidityAlarmsTotal.Inc()
		zap.L().Error("Node cannot cover payment",
			zap.Int64("node_balance", int64(nodeBalance)),
			zap.Int64("needed", int64(params.Amount+estimatedFee)))
		return nil, ErrInsufficientNodeLiquidity
	}

	var result *models.PaymentResult
	err = w.locks.WithLock(ctx, payerId, func() error {
		balance, err := w.journal.Balance(ctx, database.CustomerPath(payerId), store.CurrencyBTC)
		if err != nil {
			return err
		}
		needed := int64(params.Amount + estimatedFee)
		if balance < needed {
			return fmt.Errorf("%w: balance %d, need %d", ErrInsufficientBalance, balance, needed)
		}

		// Point of no return. A send error here means no funds left the
		// node and no entry is committed, unless the call died with an
		// unknown outcome and the wallet turns out to hold a matching send.
		txId, err := w.node.SendToAddress(ctx, params.Address, params.Amount)
		if err != nil {
			txId, err = w.recoverBroadcast(ctx, params.Address, params.Amount, err)
			if err != nil {
				return err
			}
		}

		fee := w.settledFee(ctx, txId, estimatedFee)
		total := int64(params.Amount + fee)

		entry := models.Entry{
			Memo: params.Memo,
			Metadata: models.EntryMetadata{
				Type:           store.TypeOnChainPayment,
				Currency:       store.CurrencyBTC,
				Pending:        true,
				Hash:           txId,
				PayeeAddresses: []string{params.Address},
				Sats:           int64(params.Amount),
				Cents:          ratio.CentsFromSats(int64(params.Amount)),
				Fee:            int64(fee),
				FeeCents:       ratio.CentsFromSats(int64(fee)),
			},
			Legs: []models.EntryLeg{
				{AccountPath: database.CustomerPath(payerId), Credit: total},
				{AccountPath: database.NodeAccountingPath(), Debit: total},
			},
		}
		if _, err := w.journal.Commit(ctx, entry); err != nil {
			// The payment is on the wire but not on the books. This needs
			// an operator; reconciliation cannot repair outgoing entries.
			zap.L().Error("Broadcast payment missing from ledger",
				zap.String("tx_id", txId),
				zap.String("account_id", payerId),
				zap.Error(err))
			return err
		}

		result = &models.PaymentResult{
			Success: true,
			Hash:    txId,
			Sats:    params.Amount,
			Fee:     fee,
		}
		return nil
	})
	if err != nil {
		metrics.PaymentFailuresTotal.Inc()
		return nil, err
	}

	metrics.PaymentsTotal.WithLabelValues("onchain").Inc()
	zap.L().Info("Settled on-chain payment",
		zap.String("account_id", payerId),
		zap.String("tx_id", result.Hash),
		zap.Int64("sats", int64(result.Sats)),
		zap.Int64("fee", int64(result.Fee)))
	return result, nil
}

// recoverBroadcast resolves a send whose RPC call failed without reporting
// an outcome. A timed-out call may still have broadcast; ask the wallet for
// a matching send before concluding that no funds moved.
func (w *Wallet) recoverBroadcast(ctx context.Context, address string, amount btcutil.Amount, sendErr error) (string, error) {
	if !errors.Is(sendErr, context.DeadlineExceeded) && !errors.Is(sendErr, context.Canceled) {
		return "", fmt.Errorf("failed to broadcast payment: %w", sendErr)
	}

	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	tx, err := w.node.FindOutgoingByAddress(lookupCtx, address, amount)
	if errors.Is(err, node.ErrTransactionNotFound) {
		return "", fmt.Errorf("failed to broadcast payment: %w", sendErr)
	}
	if err != nil {
		// Neither the send nor the lookup settled the question. Do not book
		// anything; an operator has to resolve this one.
		zap.L().Error("Payment outcome unknown after send failure",
			zap.String("address", address),
			zap.Int64("sats", int64(amount)),
			zap.Error(sendErr))
		return "", fmt.Errorf("payment outcome unknown: %w", err)
	}

	zap.L().Warn("Recovered broadcast after send timeout",
		zap.String("tx_id", tx.Id),
		zap.String("address", address))
	return tx.Id, nil
}

// settledFee reads the fee back from the node's record of the broadcast
// transaction. Falls back to the estimate when the record is not yet
// available; the difference is later corrected by a fee reimbursement.
func (w *Wallet) settledFee(ctx context.Context, txId string, estimate btcutil.Amount) btcutil.Amount {
	tx, err := w.node.OutgoingTransaction(ctx, txId)
	if err != nil {
		zap.L().Warn("Could not read settled fee, using estimate",
			zap.String("tx_id", txId),
			zap.Int64("estimate", int64(estimate)),
			zap.Error(err))
		return estimate
	}
	return tx.Fee
}

// OnChainFeeEstimate quotes the fee the account would pay to the address.
// Destinations on this ledger are free.
func (w *Wallet) OnChainFeeEstimate(ctx context.Context, address string, amount btcutil.Amount) (btcutil.Amount, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	_, err := w.accounts.FindAccountByAddress(ctx, address)
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, store.ErrAddressNotFound) {
		return 0, err
	}
	return w.node.EstimateFee(ctx, address, amount)
}
