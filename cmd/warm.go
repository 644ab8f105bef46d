package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/eedm-api/student-services/api/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var warmConcurrency int

var warmCmd = &cobra.Command{
	Use:   "warm-cache",
	Short: "Preload every cached resource from the database into Redis",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer studentDB.Close()

		ctx := context.Background()

		resourceCache, closeCache := newCache(ctx, appCfg.Redis)
		defer closeCache()

		catalog := services.NewCatalog(studentDB, resourceCache, nil)

		log.Info().Msg("Starting cache warm-up...")
		start := time.Now()
		if err := warmAll(ctx, catalog.Warmers(), warmConcurrency); err != nil {
			log.Fatal().Err(err).Msg("Cache warm-up failed")
		}
		log.Info().Dur("duration", time.Since(start)).Msg("Cache warm-up complete")
	},
}

// warmAll warms every resource, at most limit at a time. The first failure
// cancels the remaining work.
func warmAll(ctx context.Context, warmers []services.Warmer, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, w := range warmers {
		w := w // per-iteration copy; go.mod targets Go 1.21 loop semantics
		g.Go(func() error {
			name := w.Descriptor().Name
			n, err := w.Warm(ctx)
			if err != nil {
				return fmt.Errorf("warming %s: %w", name, err)
			}
			log.Info().Str("resource", name).Int("records", n).Msg("Resource cached")
			return nil
		})
	}

	return g.Wait()
}

func init() {
	rootCmd.AddCommand(warmCmd)
	warmCmd.Flags().IntVar(&warmConcurrency, "concurrency", 4, "number of resources loaded at once")
}
