package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eedm-api/student-services/db"
	"github.com/eedm-api/student-services/internal/appconfig"
	awsclient "github.com/eedm-api/student-services/internal/aws"
	"github.com/eedm-api/student-services/internal/cache"
	"github.com/eedm-api/student-services/internal/events"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string
	host       string
	port       int

	appCfg    *appconfig.Config
	studentDB *db.StudentDB
)

var rootCmd = &cobra.Command{
	Use:   "student-services",
	Short: "Student Services",
	Long:  `Student Services serves student records reference and transactional data as EEDM and legacy REST resources.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn",
		"sets the log level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "/etc/student-services/config.yaml",
		"path to the YAML config file")
}

// commonSetUp sets the log level, loads the config and connects to the database.
func commonSetUp() {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	dsn, err := databaseSource(context.Background(), appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve database connection string")
	}

	studentDB, err = db.NewStudentDB(dsn, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize StudentDB")
	}
}

// databaseSource returns the configured DSN, reading it from Secrets Manager
// when a secret id is configured.
func databaseSource(ctx context.Context, cfg *appconfig.Config) (string, error) {
	if cfg.Database.SecretID == "" {
		return cfg.Database.Source, nil
	}

	awsCfg, err := awsclient.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return "", err
	}

	log.Info().Str("secret", cfg.Database.SecretID).Str("region", cfg.AWS.Region).Msg("Reading database connection string from Secrets Manager")
	return awsclient.GetSecretString(ctx, awsclient.NewSecretsManagerClient(awsCfg), cfg.Database.SecretID)
}

// newCache connects to Redis, or disables caching when no address is configured.
func newCache(ctx context.Context, cfg appconfig.RedisConfig) (cache.Cache, func()) {
	if cfg.Addr == "" {
		log.Warn().Msg("No Redis address configured, caching disabled")
		return cache.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("Failed to connect to Redis")
	}

	return cache.NewRedisCache(client, cfg.TTL), func() { client.Close() }
}

// newNotifier publishes change notifications to Pulsar, or discards them when
// no Pulsar URL is configured.
func newNotifier(cfg appconfig.PulsarConfig) events.Notifier {
	if cfg.URL == "" {
		log.Warn().Msg("No Pulsar URL configured, change notifications disabled")
		return events.Discard{}
	}

	publisher, err := events.NewEventPublisher(cfg.URL, cfg.TopicProducer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize event publisher")
	}
	return publisher
}

func setLogging(level string) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
