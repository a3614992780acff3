package outwriter

import (
	"os"

	"github.com/huangsam/assetload/internal/contract"
	"golang.org/x/term"
)

// Bounds for the key column of table output.
const (
	minKeyWidth = 15
	maxKeyWidth = 80
)

// GetMaxTableKeyWidth calculates the maximum width for resource keys in table
// output based on terminal width and the number of fixed columns.
func GetMaxTableKeyWidth(cfg *contract.Config, fixedWidth int) int {
	termWidth := cfg.Width // absolute override from flag/env

	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for borders, separators and padding
	available := termWidth - fixedWidth - 20
	return min(max(available, minKeyWidth), maxKeyWidth)
}
