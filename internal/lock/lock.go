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

// Package lock serializes balance-changing operations per account. Every
// operation that reads a balance and then commits an entry based on it must
// run under the account's lock, otherwise two concurrent payments could both
// pass the balance check and overdraw the account.
package lock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

type accountLock struct {
	sem *semaphore.Weighted
	// refs counts holders and waiters so the entry can be dropped from the
	// registry once nobody references it.
	refs int
}

// Registry hands out one lock per key. Locks are created on first use and
// released back once no goroutine holds or waits on them.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*accountLock)}
}

func (r *Registry) acquire(key string) *accountLock {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[key]
	if !ok {
		l = &accountLock{sem: semaphore.NewWeighted(1)}
		r.locks[key] = l
	}
	l.refs++
	return l
}

func (r *Registry) release(key string, l *accountLock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(r.locks, key)
	}
}

// WithLock runs fn while holding the lock for key. Waiting is bounded by ctx:
// if the context is cancelled before the lock is acquired, fn never runs and
// the context error is returned.
func (r *Registry) WithLock(ctx context.Context, key string, fn func() error) error {
	l := r.acquire(key)
	defer r.release(key, l)

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)

	return fn()
}
