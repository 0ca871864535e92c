package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWithLock_SerializesSameKey(t *testing.T) {
	registry := NewRegistry()
	ctx := context.Background()

	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := registry.WithLock(ctx, "account1", func() error {
				// Unsynchronized read-modify-write; only safe if WithLock
				// actually serializes callers.
				current := counter
				time.Sleep(time.Microsecond)
				counter = current + 1
				return nil
			})
			if err != nil {
				t.Errorf("WithLock failed: %v", err)
			}
		}()
	}

	wg.Wait()
	if counter != 50 {
		t.Errorf("Expected counter 50, got %d", counter)
	}
}

func TestWithLock_IndependentKeysDoNotBlock(t *testing.T) {
	registry := NewRegistry()
	ctx := context.Background()

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		registry.WithLock(ctx, "account1", func() error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	go func() {
		registry.WithLock(ctx, "account2", func() error {
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Lock for account2 was blocked by holder of account1")
	}
	close(release)
}

func TestWithLock_ContextCancelledWhileWaiting(t *testing.T) {
	registry := NewRegistry()

	holding := make(chan struct{})
	release := make(chan struct{})

	go func() {
		registry.WithLock(context.Background(), "account1", func() error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ran := false
	err := registry.WithLock(ctx, "account1", func() error {
		ran = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
	if ran {
		t.Errorf("Callback must not run when the lock was never acquired")
	}
	close(release)
}

func TestWithLock_PropagatesCallbackError(t *testing.T) {
	registry := NewRegistry()
	expected := errors.New("boom")

	err := registry.WithLock(context.Background(), "account1", func() error {
		return expected
	})
	if !errors.Is(err, expected) {
		t.Errorf("Expected callback error, got %v", err)
	}
}

func TestWithLock_RegistryDoesNotLeak(t *testing.T) {
	registry := NewRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.WithLock(ctx, "account1", func() error { return nil })
		}()
	}
	wg.Wait()

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if len(registry.locks) != 0 {
		t.Errorf("Expected empty registry after all locks released, got %d entries", len(registry.locks))
	}
}
