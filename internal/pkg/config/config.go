package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Booking BookingConfig
	Notify  NotifyConfig
	Kafka   KafkaConfig
	AMQP    AMQPConfig
	Stripe  StripeConfig
	Outbox  OutboxConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"1"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
	// Lifetime of the customer manage token returned on booking creation.
	ManageTokenDuration string `envconfig:"JWT_MANAGE_TOKEN_DURATION" default:"2160h"`
}

// Empty Addr disables Redis and the slot cache falls back to a no-op.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:""`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CacheConfig struct {
	SlotTTL            time.Duration `envconfig:"CACHE_SLOT_TTL" default:"2m"`
	OpTimeout          time.Duration `envconfig:"CACHE_OP_TIMEOUT" default:"200ms"`
	InvalidateAttempts int           `envconfig:"CACHE_INVALIDATE_ATTEMPTS" default:"3"`
}

type BookingConfig struct {
	PendingOccupiesSlot bool `envconfig:"BOOKING_PENDING_OCCUPIES_SLOT" default:"true"`
	// Deposit currency sent to the payment processor.
	Currency string `envconfig:"BOOKING_CURRENCY" default:"usd"`
}

// Driver selects the notification publisher: kafka, amqp or log.
type NotifyConfig struct {
	Driver string `envconfig:"NOTIFY_DRIVER" default:"log"`
}

type KafkaConfig struct {
	Brokers string `envconfig:"KAFKA_BROKERS" default:""`
}

type AMQPConfig struct {
	URL      string `envconfig:"AMQP_URL" default:""`
	Exchange string `envconfig:"AMQP_EXCHANGE" default:"booking.events"`
}

// Empty SecretKey routes payment intents to the log gateway.
type StripeConfig struct {
	SecretKey        string        `envconfig:"STRIPE_SECRET_KEY" default:""`
	WebhookSecret    string        `envconfig:"STRIPE_WEBHOOK_SECRET" default:""`
	WebhookTolerance time.Duration `envconfig:"STRIPE_WEBHOOK_TOLERANCE" default:"5m"`
}

type OutboxConfig struct {
	PollEvery   time.Duration `envconfig:"OUTBOX_POLL_EVERY" default:"2s"`
	BatchSize   int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
			MinConns: 1,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:              "test-secret",
			Duration:            "1h",
			ManageTokenDuration: "24h",
		},
		Cache: CacheConfig{
			SlotTTL:            2 * time.Minute,
			OpTimeout:          200 * time.Millisecond,
			InvalidateAttempts: 3,
		},
		Booking: BookingConfig{
			PendingOccupiesSlot: true,
			Currency:            "usd",
		},
		Notify: NotifyConfig{Driver: "log"},
		Outbox: OutboxConfig{
			PollEvery:   100 * time.Millisecond,
			BatchSize:   10,
			MaxAttempts: 3,
		},
	}
}
