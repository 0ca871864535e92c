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
	"flag"
	"fmt"

	"wallet-accounting-go/internal/common"
	"wallet-accounting-go/internal/config"
	"wallet-accounting-go/internal/database"
	"wallet-accounting-go/internal/models"
	"wallet-accounting-go/internal/store"

	"go.uber.org/zap"
)

func printAccountBalance(ctx context.Context, db *database.Service, account models.Account, showHistory int) error {
	balance, err := db.Balance(ctx, database.CustomerPath(account.Id), store.CurrencyBTC)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	fmt.Printf("\n┌─ Account: %s (%s)\n", account.Name, account.Email)
	fmt.Printf("│  ID:      %s\n", account.Id)
	fmt.Printf("│  Balance: %s\n", common.FormatSats(balance))

	if showHistory <= 0 {
		return nil
	}

	lines, err := db.History(ctx, database.CustomerPath(account.Id), showHistory, 0)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	for i, line := range lines {
		amount := line.Debit - line.Credit
		sign := "+"
		if amount < 0 {
			sign = "-"
			amount = -amount
		}
		fmt.Printf("%s %-18s %s%d sats  %s  %s\n",
			common.BoxPrefix(i == len(lines)-1),
			line.Metadata.Type,
			sign, amount,
			common.FormatHash(line.Metadata.Hash),
			line.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func main() {
	accountFlag := flag.String("account", "", "Only show this account id")
	historyFlag := flag.Int("history", 0, "Show the last N ledger legs per account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx := context.Background()
	db, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	var accounts []models.Account
	if *accountFlag != "" {
		account, err := db.GetAccountById(ctx, *accountFlag)
		if err != nil {
			zap.L().Fatal("Account lookup failed", zap.Error(err))
		}
		accounts = []models.Account{*account}
	} else {
		accounts, err = db.GetAccounts(ctx)
		if err != nil {
			zap.L().Fatal("Failed to list accounts", zap.Error(err))
		}
	}

	common.PrintHeader("Ledger balances", common.DefaultWidth)

	for _, account := range accounts {
		if err := printAccountBalance(ctx, db, account, *historyFlag); err != nil {
			zap.L().Error("Failed to report account",
				zap.String("account_id", account.Id),
				zap.Error(err))
		}
	}

	// The node reserve mirrors the sum of all customer balances.
	nodeBalance, err := db.Balance(ctx, database.NodeAccountingPath(), store.CurrencyBTC)
	if err != nil {
		zap.L().Fatal("Failed to get node reserve balance", zap.Error(err))
	}
	fmt.Printf("\nNode reserve: %s\n", common.FormatSats(nodeBalance))
	common.PrintSeparator("=", common.DefaultWidth)
}
