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
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReconcileListener polls the node on an interval and runs reconciliation
// for every account with receive addresses. Accounts are processed
// concurrently up to a configured limit; the per-account lock keeps each
// individual account serialized.
type ReconcileListener struct {
	wallet          *Wallet
	pollingInterval time.Duration
	maxConcurrent   int

	stopChan chan struct{}
	doneChan chan struct{}
}

func NewReconcileListener(wallet *Wallet, pollingInterval time.Duration, maxConcurrent int) *ReconcileListener {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &ReconcileListener{
		wallet:          wallet,
		pollingInterval: pollingInterval,
		maxConcurrent:   maxConcurrent,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start runs an immediate reconciliation pass to pick up anything that
// confirmed while the service was down, then begins the polling loop.
func (l *ReconcileListener) Start(ctx context.Context) {
	zap.L().Info("Starting reconciliation listener",
		zap.Duration("polling_interval", l.pollingInterval))

	l.runPass(ctx)

	go l.pollLoop(ctx)
}

// Stop gracefully stops the listener.
func (l *ReconcileListener) Stop() {
	zap.L().Info("Stopping reconciliation listener")
	close(l.stopChan)
	<-l.doneChan
}

func (l *ReconcileListener) pollLoop(ctx context.Context) {
	defer close(l.doneChan)

	ticker := time.NewTicker(l.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.runPass(ctx)
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (l *ReconcileListener) runPass(ctx context.Context) {
	accounts, err := l.wallet.accounts.GetAccounts(ctx)
	if err != nil {
		zap.L().Error("Failed to list accounts for reconciliation", zap.Error(err))
		return
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.maxConcurrent)

	var credited atomic.Int64
	for _, account := range accounts {
		accountId := account.Id
		g.Go(func() error {
			receipts, err := l.wallet.Reconcile(groupCtx, accountId)
			if err != nil {
				// Log and keep going; the next tick retries.
				zap.L().Error("Reconciliation failed for account",
					zap.String("account_id", accountId),
					zap.Error(err))
				return nil
			}
			credited.Add(int64(len(receipts)))
			return nil
		})
	}
	_ = g.Wait()

	if credited.Load() > 0 {
		zap.L().Info("Reconciliation pass credited receipts",
			zap.Int64("count", credited.Load()))
	}
}
