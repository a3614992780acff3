package cmd

import (
	"time"

	"github.com/huangsam/assetload/internal/outwriter"
	"github.com/spf13/cobra"
)

// preloadCmd warms caches for a batch of URIs.
var preloadCmd = &cobra.Command{
	Use:   "preload <uri>...",
	Short: "Prefetch remote images in parallel",
	Long: `Prefetch every URI in parallel without decoding it.

Each slot of the result holds the URI when its prefetch succeeded and null when
it failed. The command itself only fails on setup errors.

Examples:
  assetload preload https://example.com/a.png https://example.com/b.png --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _ := newEngine()
		defer engine.Close()

		start := time.Now()
		results := engine.PreloadImages(cmd.Context(), args)
		return outwriter.NewOutWriter().WritePreload(results, cfg, time.Since(start))
	},
}
