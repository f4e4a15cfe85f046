package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	TokenExpiry    time.Duration `env:"TOKEN_EXPIRY" envDefault:"2h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	// StoreDriver selects the document store: "mongo" or "memory".
	StoreDriver   string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string        `env:"MONGO_DB" envDefault:"player_progression"`
	MongoTimeout  time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`

	// Empty RedisAddr disables the ranking index.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RankingKey    string `env:"RANKING_KEY" envDefault:"ranking:levels"`

	// Empty KafkaBrokers disables event streaming.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"player-progression"`

	// Empty SMTPHost disables friend request emails.
	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     string        `env:"SMTP_PORT" envDefault:"587"`
	SMTPSender   string        `env:"SMTP_SENDER"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`

	// Kafka and email receive events through a queue of this size each.
	EventQueueSize int           `env:"EVENT_QUEUE_SIZE" envDefault:"1024"`
	EventTimeout   time.Duration `env:"EVENT_DELIVERY_TIMEOUT" envDefault:"15s"`

	ReconcileSchedule string `env:"RECONCILE_SCHEDULE" envDefault:"@every 5m"`
}

// Load reads an optional .env file, then parses the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		logrus.WithError(err).Debug("No .env file loaded, using process environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StoreDriver != "mongo" && cfg.StoreDriver != "memory" {
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	return &cfg, nil
}

// LoadConfig is Load for main: it exits on error.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	return cfg
}
