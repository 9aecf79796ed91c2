package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Scheduling policy.
	RequestTTLHours  int `mapstructure:"REQUEST_TTL_HOURS"`  // booking-request expiry horizon, bounded 24-48
	MinBookingMins   int `mapstructure:"MIN_BOOKING_MINS"`   // shortest bookable duration
	MaxBookingMins   int `mapstructure:"MAX_BOOKING_MINS"`   // longest bookable duration
	CalendarMaxDays  int `mapstructure:"CALENDAR_MAX_DAYS"`  // widest calendar rollup range
	RateLimitPerMin  int `mapstructure:"RATE_LIMIT_PER_MIN"` // mutating requests per minute per actor
	ExpirySweepEvery int `mapstructure:"EXPIRY_SWEEP_MINS"`  // minutes between request-expiry sweeps
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("REQUEST_TTL_HOURS", 36)
	viper.SetDefault("MIN_BOOKING_MINS", 30)
	viper.SetDefault("MAX_BOOKING_MINS", 480)
	viper.SetDefault("CALENDAR_MAX_DAYS", 62)
	viper.SetDefault("RATE_LIMIT_PER_MIN", 60)
	viper.SetDefault("EXPIRY_SWEEP_MINS", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The request expiry horizon is a product policy bounded to 24-48 hours.
	if AppConfig.RequestTTLHours < 24 {
		AppConfig.RequestTTLHours = 24
	}
	if AppConfig.RequestTTLHours > 48 {
		AppConfig.RequestTTLHours = 48
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
