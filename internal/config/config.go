package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultFile = "cosmetica.yaml"

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type OutboxConfig struct {
	Interval   time.Duration `yaml:"interval"`
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
	Lease      time.Duration `yaml:"lease"`
}

type AnalyticsConfig struct {
	// Categories maps a product name to its sales reporting category.
	Categories map[string]string `yaml:"categories"`
}

type Config struct {
	Port           string          `yaml:"port"`
	DBDSN          string          `yaml:"db_dsn"`
	LogFile        string          `yaml:"log_file"`
	AllowOrigins   string          `yaml:"allow_origins"`
	SessionTTL     time.Duration   `yaml:"session_ttl"`
	RateLimit      int             `yaml:"rate_limit"`
	LoginRateLimit int             `yaml:"login_rate_limit"`
	Kafka          KafkaConfig     `yaml:"kafka"`
	Outbox         OutboxConfig    `yaml:"outbox"`
	Analytics      AnalyticsConfig `yaml:"analytics"`
}

func Defaults() Config {
	return Config{
		Port:           "8080",
		DBDSN:          "cosmetica.db", // sqlite file in the working directory
		LogFile:        "./cosmetica.log",
		AllowOrigins:   "*",
		SessionTTL:     7 * 24 * time.Hour,
		RateLimit:      120,
		LoginRateLimit: 5,
		Kafka:          KafkaConfig{Topic: "cosmetica.orders"},
		Outbox:         OutboxConfig{Interval: 2 * time.Second, BatchSize: 50, MaxRetries: 5, Lease: 5 * time.Minute},
	}
}

// Load resolves defaults, then the YAML file named by COSMETICA_CONFIG (or
// ./cosmetica.yaml), then environment variables.
func Load() (Config, error) {
	return LoadPath(os.Getenv("COSMETICA_CONFIG"))
}

// LoadPath is Load with an explicit file; "" means DefaultFile.
func LoadPath(path string) (Config, error) {
	if path == "" {
		path = DefaultFile
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s KAFKA_BROKERS=%s OUTBOX_INTERVAL=%s",
		cfg.Port, redact(cfg.DBDSN), cfg.LogFile, strings.Join(cfg.Kafka.Brokers, ","), cfg.Outbox.Interval)
	return cfg, nil
}

// LoadFile overlays path on the defaults. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("PORT", &cfg.Port)
	str("DB_DSN", &cfg.DBDSN)
	str("LOG_FILE", &cfg.LogFile)
	str("ALLOW_ORIGINS", &cfg.AllowOrigins)
	str("KAFKA_TOPIC", &cfg.Kafka.Topic)
	if v := getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	return errors.Join(
		dur("SESSION_TTL", &cfg.SessionTTL),
		num("RATE_LIMIT", &cfg.RateLimit),
		num("LOGIN_RATE_LIMIT", &cfg.LoginRateLimit),
		dur("OUTBOX_INTERVAL", &cfg.Outbox.Interval),
		num("OUTBOX_BATCH", &cfg.Outbox.BatchSize),
		num("OUTBOX_MAX_RETRIES", &cfg.Outbox.MaxRetries),
		dur("OUTBOX_LEASE", &cfg.Outbox.Lease),
	)
}

// redact hides the password of URL-style DSNs.
func redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, _ := strings.Cut(creds, ":")
	return scheme + "://" + user + ":***@" + host
}
