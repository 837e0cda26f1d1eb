package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings for the POS backend.
type Config struct {
	Port        string `envconfig:"APP_PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"supermarket-pos-secret-key"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	// Receipt event stream. Publishing is disabled when no brokers are set.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`
	ReceiptTopic string `envconfig:"RECEIPT_TOPIC" default:"receipt-events"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from the environment, honouring a local .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
