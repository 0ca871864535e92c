package pricing

import (
	"errors"
	"testing"
)

func TestNewPriceRatio_RejectsNonPositiveAmounts(t *testing.T) {
	cases := []struct {
		sats  int64
		cents int64
	}{
		{0, 100},
		{100, 0},
		{-50, 100},
		{100, -50},
	}
	for _, c := range cases {
		if _, err := NewPriceRatio(c.sats, c.cents); !errors.Is(err, ErrInvalidPriceRatio) {
			t.Errorf("Expected ErrInvalidPriceRatio for sats=%d cents=%d, got %v", c.sats, c.cents, err)
		}
	}
}

func TestCentsFromSats(t *testing.T) {
	// 50_000 sats priced at $20.00 means 1 sat = 0.04 cents.
	ratio, err := NewPriceRatio(50000, 2000)
	if err != nil {
		t.Fatalf("NewPriceRatio failed: %v", err)
	}

	if cents := ratio.CentsFromSats(50000); cents != 2000 {
		t.Errorf("Expected 2000 cents, got %d", cents)
	}
	if cents := ratio.CentsFromSats(25000); cents != 1000 {
		t.Errorf("Expected 1000 cents, got %d", cents)
	}
	// 30 sats = 1.2 cents, rounds to 1.
	if cents := ratio.CentsFromSats(30); cents != 1 {
		t.Errorf("Expected 1 cent, got %d", cents)
	}
	// 40 sats = 1.6 cents, rounds to 2.
	if cents := ratio.CentsFromSats(40); cents != 2 {
		t.Errorf("Expected 2 cents, got %d", cents)
	}
}

func TestSatsFromCents(t *testing.T) {
	ratio, err := NewPriceRatio(50000, 2000)
	if err != nil {
		t.Fatalf("NewPriceRatio failed: %v", err)
	}

	if sats := ratio.SatsFromCents(2000); sats != 50000 {
		t.Errorf("Expected 50000 sats, got %d", sats)
	}
	if sats := ratio.SatsFromCents(1); sats != 25 {
		t.Errorf("Expected 25 sats, got %d", sats)
	}
}

func TestRoundTripStaysExactForWholeAmounts(t *testing.T) {
	ratio, err := NewPriceRatio(100000000, 6000000)
	if err != nil {
		t.Fatalf("NewPriceRatio failed: %v", err)
	}

	sats := int64(40000)
	cents := ratio.CentsFromSats(sats)
	if back := ratio.SatsFromCents(cents); back != sats {
		t.Errorf("Expected round-trip to return %d, got %d", sats, back)
	}
}
