package utils

import (
	"errors"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Booking  BookingConfig
	Tracing  TracingConfig
	Cron     CronConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RedisConfig struct {
	Addr string
}

// BookingConfig holds the business knobs of the booking and payment ledgers.
type BookingConfig struct {
	VIPDiscountPercentage  decimal.Decimal
	MaxTravelersPerBooking int
	NumberRetries          int
	DefaultCurrency        string
}

type TracingConfig struct {
	JaegerEndpoint string
}

type CronConfig struct {
	SessionCleanup string
	Reconcile      string
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "travel-agency")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("VIP_DISCOUNT_PERCENTAGE", "10")
	v.SetDefault("MAX_TRAVELERS_PER_BOOKING", 10)
	v.SetDefault("BOOKING_NUMBER_RETRIES", 3)
	v.SetDefault("DEFAULT_CURRENCY", "USD")
	v.SetDefault("SESSION_CLEANUP_CRON", "0 0 2 * * *")
	v.SetDefault("RECONCILE_CRON", "0 30 3 * * *")

	// .env is optional in containers where everything comes from the environment
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.AutomaticEnv()

	discount, err := decimal.NewFromString(v.GetString("VIP_DISCOUNT_PERCENTAGE"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Port:        v.GetString("PORT"),
			Debug:       v.GetBool("DEBUG"),
			LogPath:     v.GetString("LOG_PATH"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Redis: RedisConfig{
			Addr: v.GetString("REDIS_ADDR"),
		},
		Booking: BookingConfig{
			VIPDiscountPercentage:  discount,
			MaxTravelersPerBooking: v.GetInt("MAX_TRAVELERS_PER_BOOKING"),
			NumberRetries:          v.GetInt("BOOKING_NUMBER_RETRIES"),
			DefaultCurrency:        v.GetString("DEFAULT_CURRENCY"),
		},
		Tracing: TracingConfig{
			JaegerEndpoint: v.GetString("JAEGER_ENDPOINT"),
		},
		Cron: CronConfig{
			SessionCleanup: v.GetString("SESSION_CLEANUP_CRON"),
			Reconcile:      v.GetString("RECONCILE_CRON"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	if discount.IsNegative() || discount.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, errors.New("VIP_DISCOUNT_PERCENTAGE must be in [0, 100)")
	}

	if config.Booking.NumberRetries < 1 {
		config.Booking.NumberRetries = 1
	}

	return config, nil
}

// splitList reads a comma separated setting such as CORS_ORIGINS.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
