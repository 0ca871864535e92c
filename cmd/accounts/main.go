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
	"regexp"

	"wallet-accounting-go/internal/common"
	"wallet-accounting-go/internal/config"

	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func main() {
	nameFlag := flag.String("name", "", "Account holder name (required)")
	emailFlag := flag.String("email", "", "Account holder email (required)")
	withAddressFlag := flag.Bool("with-address", false, "Provision an initial receive address")
	flag.Parse()

	if err := validateName(*nameFlag); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		return
	}
	if err := validateEmail(*emailFlag); err != nil {
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

	if !*withAddressFlag {
		db, err := common.InitializeDatabaseOnly(ctx, cfg)
		if err != nil {
			zap.L().Fatal("Failed to initialize database", zap.Error(err))
		}
		defer db.Close()

		account, err := db.CreateAccount(ctx, "", *nameFlag, *emailFlag)
		if err != nil {
			zap.L().Fatal("Failed to create account", zap.Error(err))
		}
		fmt.Printf("Created account %s (%s)\n", account.Id, account.Name)
		return
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	account, err := services.DbService.CreateAccount(ctx, "", *nameFlag, *emailFlag)
	if err != nil {
		zap.L().Fatal("Failed to create account", zap.Error(err))
	}

	address, err := services.Wallet.CreateReceiveAddress(ctx, account.Id)
	if err != nil {
		zap.L().Fatal("Account created but address provisioning failed",
			zap.String("account_id", account.Id),
			zap.Error(err))
	}

	fmt.Printf("Created account %s (%s)\n", account.Id, account.Name)
	fmt.Printf("Receive address: %s\n", address)
}
