package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/eedm-api/student-services/api/services"
	"github.com/eedm-api/student-services/internal/appconfig"
	"github.com/eedm-api/student-services/internal/cache"
	"github.com/eedm-api/student-services/internal/events"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the Pulsar consumer that invalidates cached resources on change notifications",
	Run: func(cmd *cobra.Command, args []string) {

		setLogging(logLevel)
		var err error
		appCfg, err = appconfig.LoadConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = log.Logger.WithContext(ctx)

		resourceCache, closeCache := newCache(ctx, appCfg.Redis)
		defer closeCache()

		// Initialize event consumer
		consumer, err := events.NewEventConsumer(appCfg.Pulsar.URL, appCfg.Pulsar.TopicConsumer, appCfg.Pulsar.Subscription)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event consumer")
		}
		defer consumer.Close()

		log.Info().Str("topic", appCfg.Pulsar.TopicConsumer).Msg("Waiting for change notifications...")
		if err := consumer.Run(ctx, invalidateOnChange(resourceCache)); err != nil {
			log.Fatal().Err(err).Msg("Consumer stopped")
		}
	},
}

// invalidateOnChange drops the cached copy of the resource named by each
// notification. Notifications for unknown resources are ignored.
func invalidateOnChange(c cache.Cache) events.HandlerFunc {
	return func(ctx context.Context, event events.ChangeNotification) error {
		logger := zerolog.Ctx(ctx)

		if _, ok := services.Lookup(event.Resource); !ok {
			logger.Warn().Str("resource", event.Resource).Msg("Ignoring change notification for unknown resource")
			return nil
		}

		if err := c.InvalidateResource(ctx, event.Resource); err != nil {
			return err
		}

		logger.Info().Str("resource", event.Resource).Str("id", event.ID).Str("operation", event.Operation).Msg("Cache invalidated")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}
