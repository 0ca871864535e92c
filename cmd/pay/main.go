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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"wallet-accounting-go/internal/common"
	"wallet-accounting-go/internal/config"
	"wallet-accounting-go/internal/wallet"

	"github.com/btcsuite/btcd/btcutil"
	"go.uber.org/zap"
)

type paymentRequest struct {
	accountId    string
	address      string
	amount       btcutil.Amount
	memo         string
	estimateOnly bool
}

func parseAndValidateFlags() (*paymentRequest, error) {
	accountFlag := flag.String("account", "", "Paying account id (required)")
	addressFlag := flag.String("address", "", "Destination address (required)")
	amountFlag := flag.Int64("amount", 0, "Amount in satoshis (required)")
	memoFlag := flag.String("memo", "", "Optional memo recorded on the entry")
	estimateFlag := flag.Bool("estimate", false, "Only quote the fee, do not pay")
	flag.Parse()

	if *accountFlag == "" || *addressFlag == "" || *amountFlag == 0 {
		return nil, fmt.Errorf("required flags: --account, --address, --amount")
	}
	if *amountFlag < 0 {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &paymentRequest{
		accountId:    *accountFlag,
		address:      *addressFlag,
		amount:       btcutil.Amount(*amountFlag),
		memo:         *memoFlag,
		estimateOnly: *estimateFlag,
	}, nil
}

func main() {
	request, err := parseAndValidateFlags()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if request.estimateOnly {
		fee, err := services.Wallet.OnChainFeeEstimate(ctx, request.address, request.amount)
		if err != nil {
			zap.L().Fatal("Fee estimate failed", zap.Error(err))
		}
		fmt.Printf("Estimated fee: %s\n", common.FormatSats(int64(fee)))
		return
	}

	result, err := services.Wallet.PayOnChain(ctx, wallet.PayOnChainParams{
		AccountId: request.accountId,
		Address:   request.address,
		Amount:    request.amount,
		Memo:      request.memo,
	})
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientBalance):
			fmt.Println("Payment rejected: insufficient account balance")
		case errors.Is(err, wallet.ErrSelfPayment):
			fmt.Println("Payment rejected: destination is one of the account's own addresses")
		case errors.Is(err, wallet.ErrInsufficientNodeLiquidity):
			fmt.Println("Payment rejected: service cannot cover the payment right now")
		default:
			zap.L().Fatal("Payment failed", zap.Error(err))
		}
		return
	}

	common.PrintHeader("Payment settled", common.DefaultWidth)
	if result.OnUs {
		fmt.Println("Kind:   internal transfer (no chain transaction)")
	} else {
		fmt.Println("Kind:   on-chain")
	}
	fmt.Printf("Hash:   %s\n", result.Hash)
	fmt.Printf("Amount: %s\n", common.FormatSats(int64(result.Sats)))
	fmt.Printf("Fee:    %s\n", common.FormatSats(int64(result.Fee)))
	common.PrintSeparator("=", common.DefaultWidth)
}
