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
	"wallet-accounting-go/internal/pricing"
	"wallet-accounting-go/internal/store"

	"github.com/btcsuite/btcd/btcutil"
	"go.uber.org/zap"
)

// PaymentFlow carries the pricing context of an already-settled payment into
// its fee reimbursement. The conversion reuses the ratio captured when the
// payment was priced so the reimbursement stays consistent with the
// original entry regardless of where the market has moved since.
type PaymentFlow struct {
	AccountId  string
	JournalId  string
	Hash       string
	PrepaidFee btcutil.Amount
	Ratio      pricing.PriceRatio
}

// ReimburseFee returns the difference between the fee charged at send time
// and the fee the transaction actually paid. A zero or negative difference
// means the account was not overcharged and no entry is written.
func (w *Wallet) ReimburseFee(ctx context.Context, flow PaymentFlow, actualFee btcutil.Amount) (string, error) {
	delta := int64(flow.PrepaidFee - actualFee)
	if delta <= 0 {
		zap.L().Info("No fee difference to reimburse",
			zap.String("hash", flow.Hash),
			zap.Int64("prepaid", int64(flow.PrepaidFee)),
			zap.Int64("actual", int64(actualFee)))
		return "", nil
	}

	accountPath := database.CustomerPath(flow.AccountId)

	var journalId string
	err := w.locks.WithLock(ctx, flow.AccountId, func() error {
		// One reimbursement per payment hash.
		_, exists, err := w.journal.FindEntry(ctx, store.EntryQuery{
			AccountPath: accountPath,
			Type:        store.TypeFeeReimbursement,
			Hash:        flow.Hash,
		})
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		entry := models.Entry{
			Memo: "fee reimbursement",
			Metadata: models.EntryMetadata{
				Type:           store.TypeFeeReimbursement,
				Currency:       store.CurrencyBTC,
				Hash:           flow.Hash,
				RelatedJournal: flow.JournalId,
				Sats:           delta,
				Cents:          flow.Ratio.CentsFromSats(delta),
			},
			Legs: []models.EntryLeg{
				{AccountPath: accountPath, Debit: delta},
				{AccountPath: database.NodeAccountingPath(), Credit: delta},
			},
		}
		journalId, err = w.journal.Commit(ctx, entry)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to reimburse fee for %s: %w", flow.Hash, err)
	}
	if journalId == "" {
		return "", nil
	}

	metrics.ReimbursementsTotal.Inc()
	zap.L().Info("Reimbursed fee difference",
		zap.String("account_id", flow.AccountId),
		zap.String("hash", flow.Hash),
		zap.Int64("sats", delta))
	return journalId, nil
}
