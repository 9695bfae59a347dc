package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meridian-dex/lar/internal/config"
	"github.com/meridian-dex/lar/internal/engine"
	"github.com/meridian-dex/lar/internal/ledger"
	"github.com/meridian-dex/lar/internal/logger"
	"github.com/meridian-dex/lar/internal/state"
	"github.com/meridian-dex/lar/internal/types"
	"github.com/meridian-dex/lar/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// main is the entry point for the LAR system.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("LAR Core Logic Starting...")

	// Initialize Database Connection (pool snapshots and bootstrap receipts)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Initialize Ledger Clients
	queryClient, err := ledger.NewQueryClient(config.LedgerQueryURL, config.Network)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ledger query client")
	}
	txClient, err := ledger.NewTxClient(config.LedgerSubmitURL, config.Network)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ledger transaction client")
	}
	log.Info().
		Str("network", config.Network).
		Str("queryURL", config.LedgerQueryURL).
		Msg("Ledger clients initialized")

	// Parse Tracked Pairs
	trackedPairs, err := parseTrackedPairs(config.TrackedPairs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse TRACKED_PAIRS")
	}

	// --- 2. Create Engine Instance with Dependency Injection ---
	log.Info().Msg("Creating engine instance with dependency injection...")

	engineConfig := engine.Config{
		QueryClient:  queryClient,
		TxClient:     txClient,
		Network:      config.Network,
		TrackedPairs: trackedPairs,
		Store:        state.NewStore(),
	}

	engineInstance, err := engine.New(engineConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine instance")
	}

	log.Info().Msg("Engine instance created successfully")

	// --- 3. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, engineInstance)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting LAR web API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 4. Start Engine Refresh Loop ---
	loopInterval := time.Duration(config.RefreshIntervalMinutes) * time.Minute
	log.Info().Str("interval", loopInterval.String()).Msg("Starting engine refresh loop")

	// Create context for graceful shutdown
	ctx := context.Background()

	// Start the refresh loop (this will run indefinitely)
	engineInstance.RunLoop(ctx, loopInterval)
}

// parseTrackedPairs converts "ASSET/ASSET" strings into typed asset pairs.
func parseTrackedPairs(raw []string) ([]engine.AssetPair, error) {
	pairs := make([]engine.AssetPair, 0, len(raw))
	for _, entry := range raw {
		parts := strings.SplitN(entry, "/", 2)
		if len(parts) != 2 {
			return nil, types.ErrInvalidAsset
		}
		assetA, err := types.ParseAsset(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, err
		}
		assetB, err := types.ParseAsset(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, engine.AssetPair{AssetA: assetA, AssetB: assetB})
	}
	return pairs, nil
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
