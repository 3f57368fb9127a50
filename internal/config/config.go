package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Database      DatabaseConfig   `json:"database"`
	JWTSecret     string           `json:"jwt_secret"`
	JWTAlgorithm  string           `json:"jwt_algorithm"`
	JWTExpiresMin int              `json:"jwt_expires_min"`
	Port          int              `json:"port"`
	BcryptCost    int              `json:"bcrypt_cost"`
	HashWorkers   int              `json:"hash_workers"`
	CORSOrigins   []string         `json:"cors_origins"`
	LogConfig     logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"`
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

// Load reads the optional JSON file at path, then applies .env and process
// environment overrides. An empty path means environment only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := getenv("JWT_ALGORITHM"); v != "" {
		cfg.JWTAlgorithm = v
	}
	if v := getenv("JWT_EXPIRES_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JWT_EXPIRES_MIN: %w", err)
		}
		cfg.JWTExpiresMin = n
	}
	if v := getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = n
	}
	if v := getenv("DATABASE_URL"); v != "" {
		db, err := ParseDatabaseURL(v)
		if err != nil {
			return err
		}
		cfg.Database = db
	}
	return nil
}

// ParseDatabaseURL accepts sqlite:///relative.db, sqlite:////abs/path.db and
// postgres:// or postgresql:// URLs.
func ParseDatabaseURL(raw string) (DatabaseConfig, error) {
	switch {
	case strings.HasPrefix(raw, "sqlite:///"):
		return DatabaseConfig{Driver: DriverSQLite, DSN: strings.TrimPrefix(raw, "sqlite:///")}, nil
	case strings.HasPrefix(raw, "sqlite://"):
		return DatabaseConfig{Driver: DriverSQLite, DSN: strings.TrimPrefix(raw, "sqlite://")}, nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DatabaseConfig{Driver: DriverPostgres, DSN: raw}, nil
	default:
		return DatabaseConfig{}, fmt.Errorf("unsupported DATABASE_URL scheme")
	}
}

func (cfg *Config) finalize() error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.JWTAlgorithm == "" {
		cfg.JWTAlgorithm = "HS256"
	}
	if cfg.JWTExpiresMin == 0 {
		cfg.JWTExpiresMin = 60
	}
	if cfg.JWTExpiresMin < 0 {
		return fmt.Errorf("jwt_expires_min must be positive")
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.HashWorkers <= 0 {
		cfg.HashWorkers = runtime.NumCPU()
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	switch cfg.Database.Driver {
	case DriverSQLite:
		if cfg.Database.DSN == "" {
			cfg.Database.DSN = "./app.db"
		}
	case DriverPostgres:
		if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
			return fmt.Errorf("database.dsn or database.host/dbname are required for postgres")
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres")
	}
	return nil
}
