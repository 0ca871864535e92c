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

package models

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// PaymentResult reports the outcome of a completed on-chain payment.
type PaymentResult struct {
	Success bool           `json:"success"`
	OnUs    bool           `json:"on_us"`
	Hash    string         `json:"hash,omitempty"`
	Sats    btcutil.Amount `json:"sats"`
	Fee     btcutil.Amount `json:"fee"`
}

// ReceiptResult reports one receipt credited during reconciliation.
type ReceiptResult struct {
	AccountId string         `json:"account_id"`
	Hash      string         `json:"hash"`
	Sats      btcutil.Amount `json:"sats"`
	Addresses []string       `json:"addresses"`
}

// PendingReceipt is an unconfirmed incoming transaction attributed to an
// account. Read path only: it is never posted to the ledger.
type PendingReceipt struct {
	Hash      string         `json:"hash"`
	Sats      btcutil.Amount `json:"sats"`
	Addresses []string       `json:"addresses"`
	CreatedAt time.Time      `json:"created_at"`
}

// RewardResult reports a paid onboarding reward.
type RewardResult struct {
	QuizQuestionId string         `json:"quiz_question_id"`
	EarnAmount     btcutil.Amount `json:"earn_amount"`
}
