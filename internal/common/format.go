package common

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	// Default separator widths
	DefaultWidth = 80
)

// FormatSats renders a satoshi amount as both sats and BTC.
func FormatSats(sats int64) string {
	return fmt.Sprintf("%d sats (%s)", sats, btcutil.Amount(sats).String())
}

// FormatHash shortens a transaction hash for display.
func FormatHash(hash string) string {
	if hash == "" {
		return "none"
	}
	if len(hash) > 12 {
		return hash[:12] + "..."
	}
	return hash
}

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}
