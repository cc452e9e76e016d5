package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=core_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"

type Config struct {
	DatabaseDSN   string `env:"DATABASE_DSN"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	ListenAddr    string `env:"LISTEN_ADDR" envDefault:":8080"`

	ChannelID  string `env:"CHANNEL_ID" envDefault:"LedgerApp"`
	ChannelKey string `env:"CHANNEL_KEY" envDefault:"LedgerKey001"`

	BankCode string `env:"BANK_CODE" envDefault:"100100"`
	BankKey  string `env:"BANK_SIGNER_KEY" envDefault:"bank-100100"`

	OracleURL               string        `env:"ORACLE_URL" envDefault:"http://localhost:8090"`
	OracleKey               string        `env:"ORACLE_SIGNER_KEY" envDefault:"oracle-credit-rating"`
	OracleAssertionValidity time.Duration `env:"ORACLE_ASSERTION_VALIDITY" envDefault:"10m"`
	CreditRatingThreshold   int           `env:"CREDIT_RATING_THRESHOLD" envDefault:"50"`

	SchedulerPollInterval time.Duration `env:"SCHEDULER_POLL_INTERVAL" envDefault:"30s"`
	SchedulerConcurrency  int           `env:"SCHEDULER_CONCURRENCY" envDefault:"4"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		cfg.DatabaseDSN = defaultConnectionString
	}
	cfg.DatabaseDSN = normalizeConnectionString(cfg.DatabaseDSN)

	if cfg.SchedulerConcurrency < 1 {
		cfg.SchedulerConcurrency = 1
	}

	return cfg, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
