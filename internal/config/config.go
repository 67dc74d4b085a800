package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the process configuration. It is built once at startup and passed
// by value; nothing mutates it afterwards.
type Config struct {
	AppPort string

	DBDriver        string
	DatabaseDSN     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	RabbitMQURL  string
	SeedProducts bool
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded (%v), using environment variables", err)
	}
	return FromViper(viper.New())
}

// FromViper applies defaults to v, binds the environment and builds a Config.
func FromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:belanja.db?_foreign_keys=on")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SEED_PRODUCTS", true)
	v.AutomaticEnv()

	cfg := Config{
		AppPort:         v.GetString("APP_PORT"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		SeedProducts:    v.GetBool("SEED_PRODUCTS"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
