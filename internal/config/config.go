package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBURL      string
	AppPort    string
	AppEnv     string
	Storage    string
	JWTSecret  string

	PaymentBaseURL      string
	PaymentAPIKey       string
	PaymentSecretKey    string
	PaymentContractCode string

	// Seeds an admin account at startup when both are set.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	Assignment AssignmentConfig
}

// AssignmentConfig holds the feature flags and tuning of the assignment engine.
type AssignmentConfig struct {
	AutoAssignEnabled          bool
	AutoReassignAfterRejection bool
	MaxReassignAttempts        int
	FallbackAnyActive          bool
	Workers                    int
	QueueSize                  int
	SweepSpec                  string
}

func DefaultAssignmentConfig() AssignmentConfig {
	return AssignmentConfig{
		AutoAssignEnabled:          true,
		AutoReassignAfterRejection: true,
		MaxReassignAttempts:        3,
		Workers:                    4,
		QueueSize:                  64,
		SweepSpec:                  "@every 1m",
	}
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	defaults := DefaultAssignmentConfig()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		DBURL:      os.Getenv("DB_URL"),
		AppPort:    getString("APP_PORT", "8080"),
		AppEnv:     getString("APP_ENV", "development"),
		Storage:    strings.ToLower(getString("STORAGE", StoragePostgres)),
		JWTSecret:  os.Getenv("JWT_SECRET"),

		PaymentBaseURL:      getString("PAYMENT_BASE_URL", "https://sandbox.monnify.com"),
		PaymentAPIKey:       os.Getenv("PAYMENT_API_KEY"),
		PaymentSecretKey:    os.Getenv("PAYMENT_SECRET_KEY"),
		PaymentContractCode: os.Getenv("PAYMENT_CONTRACT_CODE"),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),

		Assignment: AssignmentConfig{
			AutoAssignEnabled:          getBool("AUTO_ASSIGN_ENABLED", defaults.AutoAssignEnabled),
			AutoReassignAfterRejection: getBool("AUTO_REASSIGN_AFTER_REJECTION", defaults.AutoReassignAfterRejection),
			MaxReassignAttempts:        getIntMin("MAX_REASSIGN_ATTEMPTS", defaults.MaxReassignAttempts, 1),
			FallbackAnyActive:          getBool("ASSIGN_FALLBACK_ANY_ACTIVE", defaults.FallbackAnyActive),
			Workers:                    getIntMin("ASSIGNMENT_WORKERS", defaults.Workers, 1),
			QueueSize:                  getIntMin("ASSIGNMENT_QUEUE_SIZE", defaults.QueueSize, 1),
			SweepSpec:                  getStringAllowEmpty("ASSIGNMENT_SWEEP_SPEC", defaults.SweepSpec),
		},
	}

	if cfg.Storage == StoragePostgres && cfg.DBHost == "" && cfg.DBURL == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getStringAllowEmpty distinguishes an unset key from one explicitly set to "".
func getStringAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid boolean for %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("invalid integer for %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// getIntMin is getInt with a lower bound; values below floor use the fallback.
func getIntMin(key string, fallback, floor int) int {
	n := getInt(key, fallback)
	if n < floor {
		log.Printf("%s=%d is below %d, using %d", key, n, floor, fallback)
		return fallback
	}
	return n
}
