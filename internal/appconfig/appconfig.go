package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config holds all configuration details
type Config struct {
	Host     string         `yaml:"host" validate:"required"`
	BasePath string         `yaml:"basePath" validate:"omitempty,startswith=/"`
	DocsPath string         `yaml:"docsPath" validate:"omitempty,startswith=/"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Pulsar   PulsarConfig   `yaml:"pulsar"`
	AWS      AWSConfig      `yaml:"aws"`
	Paging   PagingConfig   `yaml:"paging"`
}

// DatabaseConfig defines the database connection details. When SecretID is
// set the connection string is read from AWS Secrets Manager instead of Source.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"omitempty,oneof=postgres"`
	Source   string `yaml:"source"`
	SecretID string `yaml:"secretId"`
}

// RedisConfig defines the cache connection. An empty address disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL           string `yaml:"url" validate:"omitempty,url"`
	TopicProducer string `yaml:"topicProducer" validate:"required_with=URL"`
	TopicConsumer string `yaml:"topicConsumer"`
	Subscription  string `yaml:"subscription"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

// PagingConfig sets the page size used when a pageable resource is listed
// without an explicit limit.
type PagingConfig struct {
	DefaultLimit int `yaml:"defaultLimit" validate:"gte=0"`
	MaxLimit     int `yaml:"maxLimit" validate:"gte=0"`
}

const (
	defaultCacheTTL     = 10 * time.Minute
	defaultPageLimit    = 100
	defaultMaxPageLimit = 500
)

// LoadConfig loads and parses the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config file path is required")
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Error().Err(err).Msg("error parsing config file template")
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, loadEnvVars()); err != nil {
		log.Error().Err(err).Msg("error executing config file template")
		return nil, err
	}

	return Parse(buf.Bytes())
}

// Parse decodes, defaults and validates a rendered YAML document.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config YAML")
		return nil, err
	}

	config.applyDefaults()

	if err := validator.New().Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = defaultCacheTTL
	}
	if c.Paging.DefaultLimit == 0 {
		c.Paging.DefaultLimit = defaultPageLimit
	}
	if c.Paging.MaxLimit == 0 {
		c.Paging.MaxLimit = defaultMaxPageLimit
	}
	if c.DocsPath == "" {
		c.DocsPath = "/docs"
	}
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
