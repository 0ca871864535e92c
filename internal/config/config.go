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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"wallet-accounting-go/internal/models"
)

func Load() (*models.Config, error) {
	pollingInterval, err := getEnvDuration("LISTENER_POLLING_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	rpcTimeout, err := getEnvDuration("NODE_RPC_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "ledger.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Node: models.NodeConfig{
			RPCHost:    getEnvString("NODE_RPC_HOST", "localhost:18443"),
			RPCUser:    getEnvString("NODE_RPC_USER", ""),
			RPCPass:    getEnvString("NODE_RPC_PASS", ""),
			RPCTimeout: rpcTimeout,
		},
		Wallet: models.WalletConfig{
			Network:          getEnvString("NETWORK", "regtest"),
			MinConfirmations: getEnvInt64("MIN_CONFIRMATIONS", 2),
			LookBackBlocks:   getEnvInt64("LOOK_BACK_BLOCKS", 12),
			FunderAccountId:  getEnvString("FUNDER_ACCOUNT_ID", ""),
			RewardsFile:      getEnvString("REWARDS_FILE", "rewards.yaml"),
			PriceRatioSats:   getEnvInt64("PRICE_RATIO_SATS", 100_000_000),
			PriceRatioCents:  getEnvInt64("PRICE_RATIO_CENTS", 6_000_000),
		},
		Listener: models.ListenerConfig{
			PollingInterval: pollingInterval,
			MaxConcurrent:   getEnvInt("LISTENER_MAX_CONCURRENT", 4),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
