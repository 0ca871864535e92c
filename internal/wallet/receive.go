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
	"fmt"

	"wallet-accounting-go/internal/database"
	"wallet-accounting-go/internal/metrics"
	"wallet-accounting-go/internal/models"
	"wallet-accounting-go/internal/onchain"
	"wallet-accounting-go/internal/store"

	"go.uber.org/zap"
)

// Reconcile credits the account for confirmed incoming transactions the
// ledger has not seen yet. Safe to call any number of times: each receipt is
// keyed by its transaction hash and credited at most once.
func (w *Wallet) Reconcile(ctx context.Context, accountId string) ([]models.ReceiptResult, error) {
	addresses, err := w.accountAddresses(ctx, accountId)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, nil
	}

	listing, err := w.node.IncomingTransactions(ctx, int32(w.config.LookBackBlocks))
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming transactions: %w", err)
	}

	minConf := int32(w.config.MinConfirmations)
	confirmed := onchain.NewTxFilter(onchain.TxFilterParams{
		ConfirmationsGTE: &minConf,
		Addresses:        addresses,
	}).Apply(listing)

	var receipts []models.ReceiptResult
	for _, tx := range confirmed {
		receipt, err := w.reconcileReceipt(ctx, accountId, addresses, tx)
		if err != nil {
			// One bad transaction must not block the rest of the listing.
			zap.L().Error("Failed to reconcile receipt",
				zap.String("account_id", accountId),
				zap.String("tx_id", tx.Id),
				zap.Error(err))
			continue
		}
		if receipt != nil {
			receipts = append(receipts, *receipt)
		}
	}
	return receipts, nil
}

func (w *Wallet) reconcileReceipt(ctx context.Context, accountId string, owned []string, tx models.SubmittedTransaction) (*models.ReceiptResult, error) {
	accountPath := database.CustomerPath(accountId)

	_, exists, err := w.journal.FindEntry(ctx, store.EntryQuery{
		AccountPath: accountPath,
		Type:        store.TypeOnChainReceipt,
		Hash:        tx.Id,
	})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	vouts, err := onchain.DecodeOutputs(tx.RawTx, w.params)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", tx.Id, err)
	}

	attributed, matched := onchain.AttributeOutputs(vouts, owned)
	if attributed == 0 {
		return nil, nil
	}
	if tx.Tokens < attributed {
		// The account cannot have received more than the transaction moved.
		// Something upstream is lying; do not touch the ledger.
		metrics.AttributionAnomaliesTotal.Inc()
		return nil, fmt.Errorf("%w: tx %s moved %d, attributed %d",
			ErrAttributionExceedsTotal, tx.Id, int64(tx.Tokens), int64(attributed))
	}

	ratio, err := w.price.CurrentRatio(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get price ratio: %w", err)
	}

	sats := int64(attributed)
	err = w.locks.WithLock(ctx, accountId, func() error {
		// Re-check under the lock: a concurrent reconciliation pass may
		// have credited this hash while we were decoding.
		_, exists, err := w.journal.FindEntry(ctx, store.EntryQuery{
			AccountPath: accountPath,
			Type:        store.TypeOnChainReceipt,
			Hash:        tx.Id,
		})
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		entry := models.Entry{
			Metadata: models.EntryMetadata{
				Type:           store.TypeOnChainReceipt,
				Currency:       store.CurrencyBTC,
				Hash:           tx.Id,
				PayeeAddresses: matched,
				Sats:           sats,
				Cents:          ratio.CentsFromSats(sats),
			},
			Legs: []models.EntryLeg{
				{AccountPath: accountPath, Debit: sats},
				{AccountPath: database.NodeAccountingPath(), Credit: sats},
			},
		}
		_, err = w.journal.Commit(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ReceiptsTotal.Inc()
	zap.L().Info("Credited on-chain receipt",
		zap.String("account_id", accountId),
		zap.String("tx_id", tx.Id),
		zap.Int64("sats", sats))

	return &models.ReceiptResult{
		AccountId: accountId,
		Hash:      tx.Id,
		Sats:      attributed,
		Addresses: matched,
	}, nil
}

// PendingReceipts lists unconfirmed incoming transactions attributed to the
// account. Informational only; nothing here reaches the journal until the
// transactions confirm and Reconcile picks them up.
func (w *Wallet) PendingReceipts(ctx context.Context, accountId string) ([]models.PendingReceipt, error) {
	addresses, err := w.accountAddresses(ctx, accountId)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, nil
	}

	listing, err := w.node.IncomingTransactions(ctx, int32(w.config.LookBackBlocks))
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming transactions: %w", err)
	}

	minConf := int32(w.config.MinConfirmations)
	unconfirmed := onchain.NewTxFilter(onchain.TxFilterParams{
		ConfirmationsLT: &minConf,
		Addresses:       addresses,
	}).Apply(listing)

	var pending []models.PendingReceipt
	for _, tx := range unconfirmed {
		vouts, err := onchain.DecodeOutputs(tx.RawTx, w.params)
		if err != nil {
			zap.L().Warn("Skipping undecodable pending transaction",
				zap.String("tx_id", tx.Id),
				zap.Error(err))
			continue
		}
		attributed, matched := onchain.AttributeOutputs(vouts, addresses)
		if attributed == 0 {
			continue
		}
		pending = append(pending, models.PendingReceipt{
			Hash:      tx.Id,
			Sats:      attributed,
			Addresses: matched,
			CreatedAt: tx.CreatedAt,
		})
	}
	return pending, nil
}
