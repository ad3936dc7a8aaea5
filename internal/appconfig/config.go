// Package appconfig loads process configuration from the Lambda
// environment. One immutable Config is built at cold start and handed to
// each component; nothing reads the environment after that.
package appconfig

import (
	"errors"
	"fmt"
	"strconv"

	"email-api/internal/emaillog"
)

type Config struct {
	AppName          string
	LogTableName     string
	DestinationIndex string
	// LogExpiryDays is the log retention window in days. Zero keeps
	// records indefinitely.
	LogExpiryDays int
	// UTCOffset is the fixed offset used to render LocalTime in query
	// results, e.g. "+07:00".
	UTCOffset            string
	ConfigurationSetName string
	DefaultFromAddress   string
}

// Load reads configuration through getenv (os.Getenv in production) and
// validates it. Malformed values fail the cold start instead of surfacing
// mid-request.
func Load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppName:              getenv("APP_NAME"),
		LogTableName:         getenv("LOG_TABLE_NAME"),
		DestinationIndex:     getenv("DESTINATION_ID_INDEX"),
		UTCOffset:            getenv("UTC_OFFSET"),
		ConfigurationSetName: getenv("CONFIGURATION_SET_NAME"),
		DefaultFromAddress:   getenv("DEFAULT_FROM_ADDRESS"),
	}

	if cfg.AppName == "" {
		cfg.AppName = "email-api"
	}
	if cfg.LogTableName == "" {
		return nil, errors.New("LOG_TABLE_NAME is required")
	}

	if v := getenv("LOG_EXPIRY"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid LOG_EXPIRY %q: must be a non-negative number of days", v)
		}
		cfg.LogExpiryDays = days
	}

	if cfg.UTCOffset == "" {
		cfg.UTCOffset = "+00:00"
	}
	if _, err := emaillog.ParseOffset(cfg.UTCOffset); err != nil {
		return nil, fmt.Errorf("invalid UTC_OFFSET: %w", err)
	}

	return cfg, nil
}
