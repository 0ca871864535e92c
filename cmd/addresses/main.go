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
	"wallet-accounting-go/internal/models"

	"go.uber.org/zap"
)

func printAddresses(account models.Account, addresses []models.Address) {
	fmt.Printf("\n┌─ Account: %s (%s)\n", account.Name, account.Email)
	fmt.Printf("│  ID: %s\n", account.Id)
	fmt.Printf("│  Addresses: %d\n", len(addresses))
	for i, addr := range addresses {
		fmt.Printf("%s %s  (since %s)\n",
			common.BoxPrefix(i == len(addresses)-1),
			addr.Address,
			addr.CreatedAt.Format("2006-01-02"))
	}
}

func main() {
	accountFlag := flag.String("account", "", "Only show this account id")
	provisionFlag := flag.Bool("new", false, "Provision a fresh receive address for --account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx := context.Background()

	if *provisionFlag {
		if *accountFlag == "" {
			fmt.Println("Error: --new requires --account")
			return
		}
		services, err := common.InitializeServices(ctx, cfg)
		if err != nil {
			zap.L().Fatal("Failed to initialize services", zap.Error(err))
		}
		defer services.Close()

		address, err := services.Wallet.CreateReceiveAddress(ctx, *accountFlag)
		if err != nil {
			zap.L().Fatal("Failed to provision address", zap.Error(err))
		}
		fmt.Printf("New receive address for %s: %s\n", *accountFlag, address)
		return
	}

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

	common.PrintHeader("Receive addresses", common.DefaultWidth)
	total := 0
	for _, account := range accounts {
		addresses, err := db.ReceiveAddresses(ctx, account.Id)
		if err != nil {
			zap.L().Error("Failed to list addresses",
				zap.String("account_id", account.Id),
				zap.Error(err))
			continue
		}
		if len(addresses) == 0 {
			continue
		}
		printAddresses(account, addresses)
		total += len(addresses)
	}
	fmt.Printf("\nTotal addresses: %d\n", total)
	common.PrintSeparator("=", common.DefaultWidth)
}
