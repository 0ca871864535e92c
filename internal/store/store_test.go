package store

import (
	"errors"
	"fmt"
	"testing"
)

// Sentinels are matched with errors.Is by callers, including through wrapped
// chains; their messages surface in CLI output.
func TestSentinelsSurviveWrapping(t *testing.T) {
	cases := []struct {
		sentinel error
		message  string
	}{
		{ErrUnbalancedEntry, "entry legs do not balance"},
		{ErrAccountNotFound, "account not found"},
		{ErrAddressNotFound, "no account found for address"},
		{ErrRewardAlreadyClaimed, "reward already claimed"},
	}
	for _, tc := range cases {
		if tc.sentinel.Error() != tc.message {
			t.Errorf("Expected message %q, got %q", tc.message, tc.sentinel.Error())
		}
		wrapped := fmt.Errorf("commit failed: %w", tc.sentinel)
		if !errors.Is(wrapped, tc.sentinel) {
			t.Errorf("Expected wrapped error to match %q", tc.message)
		}
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if errors.Is(ErrAccountNotFound, ErrAddressNotFound) {
		t.Errorf("Account and address sentinels must not match each other")
	}
	if errors.Is(ErrUnbalancedEntry, ErrRewardAlreadyClaimed) {
		t.Errorf("Journal and reward sentinels must not match each other")
	}
}
