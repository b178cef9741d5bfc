package config

import (
	"fmt"  // Error formatting
	"time" // Durations for token and throttle windows

	"github.com/caarlos0/env/v8" // Struct-tag based environment parsing
	"github.com/joho/godotenv"   // For loading .env files
)

// Supported values for DB_DRIVER
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported values for SUMMARY_CATEGORY_ORDER
const (
	CategoryOrderTotal = "total"
	CategoryOrderName  = "category"
)

// Config holds the application configuration
type Config struct {
	AppPort    string `env:"APP_PORT" envDefault:"5001"`           // Application port
	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`         // mysql, postgres or sqlite
	DBUser     string `env:"DB_USER"`                              // Database user
	DBPassword string `env:"DB_PASSWORD"`                          // Database password
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"`       // Database host
	DBPort     string `env:"DB_PORT" envDefault:"3306"`            // Database port
	DBName     string `env:"DB_NAME"`                              // Database name
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`      // Postgres sslmode
	SQLitePath string `env:"SQLITE_PATH" envDefault:"expenses.db"` // SQLite file, ":memory:" for an ephemeral store

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"` // JWT secret key
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`     // Access token lifetime

	RedisAddr        string        `env:"REDIS_ADDR"`                        // Redis address, empty disables login throttling
	RedisPass        string        `env:"REDIS_PASS"`                        // Redis password
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`           // Redis database number
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"` // Failed logins allowed per window
	LoginWindow      time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`     // Throttle window

	CategoryOrder string   `env:"SUMMARY_CATEGORY_ORDER" envDefault:"total"` // total or category
	CORSOrigins   []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	IsProd        bool     `env:"IS_PROD" envDefault:"false"` // Is production environment
}

// LoadConfig loads configuration from the environment, reading .env first if present
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the application cannot act on
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CategoryOrder {
	case CategoryOrderTotal, CategoryOrderName:
	default:
		return fmt.Errorf("unsupported SUMMARY_CATEGORY_ORDER %q", c.CategoryOrder)
	}
	if c.LoginMaxAttempts < 1 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// MySQLDSN builds the Data Source Name for the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// PostgresDSN builds the keyword/value connection string for the Postgres driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}
