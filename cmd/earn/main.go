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
	"wallet-accounting-go/internal/store"
	"wallet-accounting-go/internal/wallet"

	"go.uber.org/zap"
)

func main() {
	accountFlag := flag.String("account", "", "Recipient account id (required)")
	questionFlag := flag.String("question", "", "Quiz question id (required)")
	flag.Parse()

	if *accountFlag == "" || *questionFlag == "" {
		fmt.Println("Error: required flags: --account, --question")
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

	if cfg.Wallet.FunderAccountId == "" {
		zap.L().Fatal("FUNDER_ACCOUNT_ID must be configured to pay rewards")
	}

	rewardAmounts, err := common.RewardAmounts(cfg.Wallet.RewardsFile)
	if err != nil {
		zap.L().Fatal("Failed to load rewards table", zap.Error(err))
	}

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	result, err := services.Wallet.AddEarn(ctx, *accountFlag, *questionFlag, rewardAmounts)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRewardAlreadyClaimed):
			fmt.Println("Reward already claimed for this question")
		case errors.Is(err, wallet.ErrInvalidQuizQuestionId):
			fmt.Printf("Unknown quiz question: %s\n", *questionFlag)
		default:
			zap.L().Fatal("Reward payout failed", zap.Error(err))
		}
		return
	}

	fmt.Printf("Paid %s for %s to account %s\n",
		common.FormatSats(int64(result.EarnAmount)), result.QuizQuestionId, *accountFlag)
}
