package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Source kinds.
const (
	SourceCSV    = "csv"
	SourceXLSX   = "xlsx"
	SourceSheets = "sheets"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SourceKind string
	SourcePath string

	// Google Sheets source.
	SheetsSpreadsheetID   string
	SheetsCredentialsFile string
	SheetsTimeout         time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional Kafka sink for computed metrics rows.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sheetsTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("SHEETS_TIMEOUT", "30s"))
	if err != nil || sheetsTimeout <= 0 {
		return nil, errors.New("invalid SHEETS_TIMEOUT")
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SourceKind:            strings.ToLower(sharedcfg.EnvOrDefault("SOURCE_KIND", SourceCSV)),
		SourcePath:            sharedcfg.EnvOrDefault("SOURCE_PATH", "data"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsCredentialsFile: os.Getenv("SHEETS_CREDENTIALS_FILE"),
		SheetsTimeout:         sheetsTimeout,
		HTTPAddr:              sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:              sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:             sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:       shutdownTimeout,
		KafkaEnabled:          kafkaEnabled,
		KafkaBrokers:          sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:        sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "reliability-metrics"),
	}

	switch cfg.SourceKind {
	case SourceCSV, SourceXLSX:
		if cfg.SourcePath == "" {
			return nil, errors.New("SOURCE_PATH is required")
		}
	case SourceSheets:
		if cfg.SheetsSpreadsheetID == "" {
			return nil, errors.New("SHEETS_SPREADSHEET_ID is required when SOURCE_KIND is sheets")
		}
		if cfg.SheetsCredentialsFile == "" {
			return nil, errors.New("SHEETS_CREDENTIALS_FILE is required when SOURCE_KIND is sheets")
		}
	default:
		return nil, fmt.Errorf("invalid SOURCE_KIND %q: want csv, xlsx or sheets", cfg.SourceKind)
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
