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

package onchain

import "wallet-accounting-go/internal/models"

// TxFilter selects transactions from a node listing by confirmation depth
// and destination address. Criteria are combined with AND; an unset criterion
// matches everything.
type TxFilter struct {
	confirmationsGTE *int32
	confirmationsLT  *int32
	addresses        map[string]struct{}
}

type TxFilterParams struct {
	ConfirmationsGTE *int32
	ConfirmationsLT  *int32
	Addresses        []string
}

func NewTxFilter(params TxFilterParams) *TxFilter {
	f := &TxFilter{
		confirmationsGTE: params.ConfirmationsGTE,
		confirmationsLT:  params.ConfirmationsLT,
	}
	if params.Addresses != nil {
		f.addresses = make(map[string]struct{}, len(params.Addresses))
		for _, address := range params.Addresses {
			f.addresses[address] = struct{}{}
		}
	}
	return f
}

func (f *TxFilter) matches(tx models.SubmittedTransaction) bool {
	if f.confirmationsGTE != nil && tx.Confirmations < *f.confirmationsGTE {
		return false
	}
	if f.confirmationsLT != nil && tx.Confirmations >= *f.confirmationsLT {
		return false
	}
	if f.addresses != nil {
		found := false
		for _, address := range tx.OutputAddresses {
			if _, ok := f.addresses[address]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply returns the transactions matching every configured criterion,
// preserving the input order.
func (f *TxFilter) Apply(txs []models.SubmittedTransaction) []models.SubmittedTransaction {
	filtered := []models.SubmittedTransaction{}
	for _, tx := range txs {
		if f.matches(tx) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}
