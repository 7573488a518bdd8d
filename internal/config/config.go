package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	ServerAddr         string        `env:"RUN_ADDRESS"`
	LogLevel           string        `env:"LOG_LEVEL"`
	LogFormat          string        `env:"LOG_FORMAT"`
	DatabaseURI        string        `env:"DATABASE_URI"`
	JWTSecretKey       string        `env:"JWT_SECRET_KEY"`
	AdminPassword      string        `env:"ADMIN_PASSWORD"`
	IdempotencyDB      string        `env:"IDEMPOTENCY_DB"`
	SheetsURI          string        `env:"SHEETS_URI"`
	SheetsAPIKey       string        `env:"SHEETS_API_KEY"`
	SheetsPollInterval time.Duration `env:"SHEETS_POLL_INTERVAL"`
}

func NewConfig() (Config, error) {
	cfg := Config{}

	flag.StringVar(&cfg.ServerAddr, "a", "0.0.0.0:8080", "server listening address [env:RUN_ADDRESS]")
	flag.StringVar(&cfg.LogLevel, "l", "info", "log output level [env:LOG_LEVEL]")
	flag.StringVar(&cfg.LogFormat, "f", "json", "log output format: json, text, tint [env:LOG_FORMAT]")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database connection string, in-memory storage if empty [env:DATABASE_URI]")
	flag.StringVar(&cfg.JWTSecretKey, "s", "secretkey", "JWT secret to sign tokens [env:JWT_SECRET_KEY]")
	flag.StringVar(&cfg.AdminPassword, "p", "admin123", "administrator password [env:ADMIN_PASSWORD]")
	flag.StringVar(&cfg.IdempotencyDB, "k", "pandero-idempotency.db", "idempotency keys database file [env:IDEMPOTENCY_DB]")
	flag.StringVar(&cfg.SheetsURI, "r", "", "spreadsheet export URI, sync disabled if empty [env:SHEETS_URI]")
	flag.StringVar(&cfg.SheetsAPIKey, "t", "", "spreadsheet export API key [env:SHEETS_API_KEY]")
	flag.DurationVar(&cfg.SheetsPollInterval, "i", 60*time.Second, "spreadsheet poll interval [env:SHEETS_POLL_INTERVAL]")
	flag.Parse()

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("env.Parse: %w", err)
	}

	return cfg, nil
}
