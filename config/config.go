package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	ledgerdomain "github.com/mfahadasghar/flow-fund/internal/ledger/domain"
)

type Config struct {
	Server Server
	DB     DB
	Redis  Redis
	Fund   Fund
	App    App
}

type Server struct {
	Port           string
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

type DB struct {
	DSN            string
	MaxConns       int
	MinConns       int
	MigrateOnStart bool
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Fund holds the accounts and policy knobs of the donation core.
type Fund struct {
	// CustodyAccount is the ledger account the allocator pulls donations
	// into before fanning them out to project wallets.
	CustodyAccount string
	// TreasuryAccount receives swept rounding dust.
	TreasuryAccount string
	// RestrictFundsRecorder gates the registry's received-funds hook to
	// API-key callers. Defaults to restricted.
	RestrictFundsRecorder bool
	// DustReportCron is the cron spec for the dust accounting job.
	DustReportCron string
}

type App struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: Server{
			Port:           getEnv("PORT", "8080"),
			APIKey:         getEnv("API_KEY", ""),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		DB: DB{
			DSN:            getEnv("DB_DSN", ""),
			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:       getEnvAsInt("DB_MIN_CONNS", 2),
			MigrateOnStart: getEnvAsBool("MIGRATE_ON_START", true),
		},
		Redis: Redis{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Fund: Fund{
			CustodyAccount:        getEnv("CUSTODY_ACCOUNT", "0x000000000000000000000000000000000000a110"),
			TreasuryAccount:       getEnv("TREASURY_ACCOUNT", ""),
			RestrictFundsRecorder: getEnvAsBool("RESTRICT_FUNDS_RECORDER", true),
			DustReportCron:        getEnv("DUST_REPORT_CRON", "0 0 * * * *"),
		},
		App: App{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Fund.CustodyAccount == "" {
		return fmt.Errorf("CUSTODY_ACCOUNT is required")
	}

	// Ledger rows are keyed by normalized (lower-cased) addresses, so
	// the configured accounts must be stored the same way or allowance
	// lookups against custody would never match.
	custody, err := ledgerdomain.NormalizeAddress(c.Fund.CustodyAccount)
	if err != nil {
		return fmt.Errorf("CUSTODY_ACCOUNT: %w", err)
	}
	c.Fund.CustodyAccount = custody

	if c.Fund.TreasuryAccount != "" {
		treasury, err := ledgerdomain.NormalizeAddress(c.Fund.TreasuryAccount)
		if err != nil {
			return fmt.Errorf("TREASURY_ACCOUNT: %w", err)
		}
		c.Fund.TreasuryAccount = treasury
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}
