package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	POS       POSConfig
	Business  BusinessConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// POSConfig configures the vendor POS API the reconciliation engine syncs
// from. AccessToken has no default: a missing token surfaces as a
// configuration error on the first sync attempt.
type POSConfig struct {
	BaseURL        string
	AccessToken    string
	TimeoutSeconds int
	// MoneyDivisor converts vendors that report minor-unit integers
	// (e.g. 100 for cents). Leave at 1 for major-unit feeds.
	MoneyDivisor int64
}

// BusinessConfig holds merchant-level settings for the closing process.
type BusinessConfig struct {
	// Timezone is the business timezone used to resolve a calendar
	// date's start/end instants.
	Timezone string
	// SafeBoxNoteValue is the fixed denomination of the notes counted
	// into the safe box.
	SafeBoxNoteValue int64
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "closeday-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "closeday")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Bangkok")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("POS_BASE_URL", "https://api.loyverse.com/v1.0")
	viper.SetDefault("POS_TIMEOUT_SECONDS", 30)
	viper.SetDefault("POS_MONEY_DIVISOR", 1)
	viper.SetDefault("BUSINESS_TIMEZONE", "Asia/Bangkok")
	viper.SetDefault("SAFE_BOX_NOTE_VALUE", 1000)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		POS: POSConfig{
			BaseURL:        viper.GetString("POS_BASE_URL"),
			AccessToken:    viper.GetString("POS_ACCESS_TOKEN"),
			TimeoutSeconds: viper.GetInt("POS_TIMEOUT_SECONDS"),
			MoneyDivisor:   viper.GetInt64("POS_MONEY_DIVISOR"),
		},
		Business: BusinessConfig{
			Timezone:         viper.GetString("BUSINESS_TIMEZONE"),
			SafeBoxNoteValue: viper.GetInt64("SAFE_BOX_NOTE_VALUE"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
