package cmd

import (
	"time"

	"github.com/huangsam/assetload/internal/outwriter"
	"github.com/huangsam/assetload/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// fetchCmd loads every URI through a headless session.
var fetchCmd = &cobra.Command{
	Use:   "fetch <uri>...",
	Short: "Load remote images with retry and caching",
	Long: `Load each URI through its own load session against the HTTP render target.

Each session is admitted after the lazy delay (unless --no-lazy), consults the
shared cache, fetches and decodes the image, and retries with linear backoff
until --retry-limit is exhausted. The final state of every session is printed.

Examples:
  # Load two images with three retries each
  assetload fetch https://example.com/a.png https://example.com/b.webp --retry-limit 3

  # Send an auth header and write JSON
  assetload fetch https://example.com/private.png --header "Authorization=Bearer x" --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, client := newEngine()
		defer engine.Close()

		start := time.Now()
		results := engine.FetchAll(cmd.Context(), client, args, func(uri string) schema.LoadOptions {
			return cfg.LoadOptions(uri)
		})

		ow := outwriter.NewOutWriter()
		if err := ow.WriteFetch(results, cfg, time.Since(start)); err != nil {
			return err
		}
		if viper.GetBool("stats") {
			return ow.WriteCacheStats(engine.GetCacheStats(), cfg)
		}
		return nil
	},
}
