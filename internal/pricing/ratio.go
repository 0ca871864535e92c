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

// Package pricing converts between satoshis and fiat cents for dual-currency
// journal entries. Ledger legs always carry integers; the ratio itself is the
// only place fractional math happens, and it uses exact decimal arithmetic.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidPriceRatio = errors.New("price ratio requires positive sats and cents amounts")

// PriceRatio captures the exchange rate at which a payment flow was priced,
// expressed as the sats and cents amounts of the same value. Deriving later
// conversions (fee reimbursements in particular) from the captured pair keeps
// them consistent with the original entry even after the market price moves.
type PriceRatio struct {
	sats  decimal.Decimal
	cents decimal.Decimal
}

func NewPriceRatio(sats, cents int64) (PriceRatio, error) {
	if sats <= 0 || cents <= 0 {
		return PriceRatio{}, ErrInvalidPriceRatio
	}
	return PriceRatio{
		sats:  decimal.NewFromInt(sats),
		cents: decimal.NewFromInt(cents),
	}, nil
}

// CentsFromSats converts a sats amount at the captured rate, rounding half
// away from zero to the nearest cent.
func (r PriceRatio) CentsFromSats(sats int64) int64 {
	return decimal.NewFromInt(sats).
		Mul(r.cents).
		Div(r.sats).
		Round(0).
		IntPart()
}

// SatsFromCents converts a cents amount at the captured rate, rounding half
// away from zero to the nearest sat.
func (r PriceRatio) SatsFromCents(cents int64) int64 {
	return decimal.NewFromInt(cents).
		Mul(r.sats).
		Div(r.cents).
		Round(0).
		IntPart()
}
