package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// Network is the target ledger network: "testnet" or "mainnet". It is
	// loaded once here and bound into constructed clients; nothing consults
	// a mutable process-wide default afterwards.
	Network string

	// LedgerQueryURL is the base URL of the ledger query service.
	LedgerQueryURL string
	// LedgerSubmitURL is the base URL of the ledger transaction submission service.
	LedgerSubmitURL string

	// RefreshIntervalMinutes is the tracked-pair refresh loop interval.
	RefreshIntervalMinutes int

	// TrackedPairs are the asset pairs the refresh loop snapshots, each in
	// "ASSET/ASSET" form using the canonical asset strings
	// ("native" or "CODE:ISSUER").
	TrackedPairs []string

	// MaxRouteSplits caps the number of sources one route may be split across.
	MaxRouteSplits int
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	Network, err = getEnv("LAR_NETWORK")
	if err != nil {
		return err
	}
	if Network != "testnet" && Network != "mainnet" {
		return errors.New("LAR_NETWORK must be \"testnet\" or \"mainnet\", got: " + Network)
	}

	LedgerQueryURL, err = getEnv("LEDGER_QUERY_URL")
	if err != nil {
		return err
	}

	LedgerSubmitURL, err = getEnv("LEDGER_SUBMIT_URL")
	if err != nil {
		return err
	}

	RefreshIntervalMinutes, err = getEnvAsInt("REFRESH_INTERVAL_MINUTES")
	if err != nil {
		return err
	}
	if RefreshIntervalMinutes <= 0 {
		return errors.New("REFRESH_INTERVAL_MINUTES must be positive")
	}

	MaxRouteSplits, err = getEnvAsInt("MAX_ROUTE_SPLITS")
	if err != nil {
		return err
	}
	if MaxRouteSplits <= 0 {
		return errors.New("MAX_ROUTE_SPLITS must be positive")
	}

	pairsRaw, err := getEnv("TRACKED_PAIRS")
	if err != nil {
		return err
	}
	TrackedPairs = nil
	for _, pair := range strings.Split(pairsRaw, ";") {
		pair = strings.TrimSpace(pair)
		if pair != "" {
			TrackedPairs = append(TrackedPairs, pair)
		}
	}

	log.Debug().
		Str("Network", Network).
		Str("LedgerQueryURL", LedgerQueryURL).
		Int("TrackedPairs", len(TrackedPairs)).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsInt retrieves an environment variable as an int. Returns error if not set or invalid.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}
