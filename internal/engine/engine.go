/*

This file contains the aggregation engine: the dependency-injected facade
over discovery, routing, and bootstrap planning, plus the periodic refresh
loop that snapshots tracked pairs into the metadata store.

*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meridian-dex/lar/internal/bootstrap"
	"github.com/meridian-dex/lar/internal/discovery"
	"github.com/meridian-dex/lar/internal/ledger"
	"github.com/meridian-dex/lar/internal/logger"
	"github.com/meridian-dex/lar/internal/poolmath"
	"github.com/meridian-dex/lar/internal/router"
	"github.com/meridian-dex/lar/internal/types"
	"github.com/meridian-dex/lar/internal/utils"
)

// AssetPair is one tracked asset pair for the refresh loop.
type AssetPair struct {
	AssetA types.Asset
	AssetB types.Asset
}

// MetadataStore is the narrow persistence interface the engine writes
// through: refresh-loop pool snapshots, bootstrap receipts, and share
// positions. A nil store disables persistence.
type MetadataStore interface {
	UpsertPoolRecord(source types.LiquiditySource) error
	SaveBootstrapReceipt(plan types.BootstrapPlan, targetLiquidityUSD float64, txHash string) (int64, error)
	SavePosition(position types.Position) error
}

// Config holds the dependencies for creating a new Engine instance.
type Config struct {
	QueryClient  discovery.LedgerQuery
	TxClient     *ledger.TxClient
	Adapters     []discovery.ExternalAdapter
	Network      string
	TrackedPairs []AssetPair

	// Store receives pool snapshots, bootstrap receipts, and positions.
	// Nil disables persistence.
	Store MetadataStore
}

// Engine exposes the programmatic liquidity aggregation API.
type Engine struct {
	logger     zerolog.Logger
	discoverer *discovery.Discoverer
	planner    *bootstrap.Planner
	txClient   *ledger.TxClient
	network    string

	trackedPairs []AssetPair
	store        MetadataStore
}

// New creates a new Engine instance with dependency injection.
func New(cfg Config) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	discoverer, err := discovery.New(cfg.QueryClient, cfg.Adapters...)
	if err != nil {
		return nil, fmt.Errorf("failed to build discoverer: %w", err)
	}
	planner, err := bootstrap.New(discoverer)
	if err != nil {
		return nil, fmt.Errorf("failed to build bootstrap planner: %w", err)
	}

	engine := &Engine{
		logger:       logger.GetForComponent("engine_core"),
		discoverer:   discoverer,
		planner:      planner,
		txClient:     cfg.TxClient,
		network:      cfg.Network,
		trackedPairs: cfg.TrackedPairs,
		store:        cfg.Store,
	}

	engine.logger.Info().
		Str("network", engine.network).
		Int("trackedPairs", len(engine.trackedPairs)).
		Int("externalAdapters", len(cfg.Adapters)).
		Msg("Engine instance created successfully with dependency injection")

	return engine, nil
}

func validateConfig(cfg Config) error {
	if cfg.QueryClient == nil {
		return errors.New("ledger query client cannot be nil")
	}
	if cfg.Network != "testnet" && cfg.Network != "mainnet" {
		return fmt.Errorf("unknown network %q (want testnet or mainnet)", cfg.Network)
	}
	return nil
}

// DiscoverLiquiditySources returns the current source set for the pair.
func (e *Engine) DiscoverLiquiditySources(ctx context.Context, assetA, assetB types.Asset) ([]types.LiquiditySource, error) {
	return e.discoverer.DiscoverLiquiditySources(ctx, assetA, assetB)
}

// FindBestSource returns the single best source for the trade, or nil.
func (e *Engine) FindBestSource(sources []types.LiquiditySource, inputAmount float64) *types.LiquiditySource {
	return router.FindBestSource(sources, inputAmount)
}

// CalculateOptimalRoute returns the multi-way split plan for the trade.
func (e *Engine) CalculateOptimalRoute(sources []types.LiquiditySource, inputAmount float64, maxSplits int) types.AggregatedRoute {
	return router.CalculateOptimalRoute(sources, inputAmount, maxSplits)
}

// CheckPoolHealth scores one discovered source snapshot.
func (e *Engine) CheckPoolHealth(source types.LiquiditySource) types.PoolHealth {
	return poolmath.CheckPoolHealth(source)
}

// GetAggregatedPrice returns the TVL-weighted price view for the pair.
func (e *Engine) GetAggregatedPrice(ctx context.Context, assetA, assetB types.Asset) (types.AggregatedPrice, error) {
	return e.discoverer.GetAggregatedPrice(ctx, assetA, assetB)
}

// BootstrapNewPool plans initial liquidity for the pair without moving funds.
func (e *Engine) BootstrapNewPool(ctx context.Context, cfg types.BootstrapConfig) types.BootstrapPlan {
	return e.planner.BootstrapNewPool(ctx, cfg)
}

// TriggerInitialLiquidity runs the bootstrap planner and, when a signer is
// provided and the plan succeeds, drives the deposit transaction through the
// ledger transaction service. The plan itself is surfaced unchanged; the
// submit result is nil for plan-only runs and failed plans. Every outcome is
// persisted as a receipt, and an executed deposit records a share position
// for the configured wallet.
func (e *Engine) TriggerInitialLiquidity(ctx context.Context, cfg types.BootstrapConfig, signer ledger.Signer) (types.BootstrapPlan, *ledger.SubmitResult, error) {
	plan := e.planner.BootstrapNewPool(ctx, cfg)
	if !plan.Success || signer == nil {
		e.persistReceipt(plan, cfg.TargetLiquidityUSD, "")
		return plan, nil, nil
	}
	if e.txClient == nil {
		e.persistReceipt(plan, cfg.TargetLiquidityUSD, "")
		return plan, nil, errors.New("no transaction client configured for execution")
	}

	operation, err := depositOperation(cfg, plan)
	if err != nil {
		e.persistReceipt(plan, cfg.TargetLiquidityUSD, "")
		return plan, nil, fmt.Errorf("failed to build deposit operation: %w", err)
	}

	result, err := e.txClient.BuildAndSubmit(ctx, []ledger.Operation{operation}, signer)
	if err != nil {
		e.persistReceipt(plan, cfg.TargetLiquidityUSD, "")
		return plan, nil, fmt.Errorf("bootstrap execution failed: %w", err)
	}

	e.persistReceipt(plan, cfg.TargetLiquidityUSD, result.Hash)
	e.recordPosition(cfg, plan, operation.PoolID)

	e.logger.Info().
		Str("planID", plan.PlanID).
		Str("txHash", result.Hash).
		Msg("Bootstrap deposit submitted")

	return plan, &result, nil
}

// persistReceipt writes the bootstrap outcome to the metadata store.
// Persistence failures are logged, never surfaced to the caller.
func (e *Engine) persistReceipt(plan types.BootstrapPlan, targetLiquidityUSD float64, txHash string) {
	if e.store == nil {
		return
	}
	if _, err := e.store.SaveBootstrapReceipt(plan, targetLiquidityUSD, txHash); err != nil {
		e.logger.Error().
			Err(err).
			Str("planID", plan.PlanID).
			Msg("Failed to persist bootstrap receipt")
	}
}

// recordPosition books the estimated share position minted by an executed
// bootstrap deposit. The pool is brand new, so the first-deposit share rule
// applies.
func (e *Engine) recordPosition(cfg types.BootstrapConfig, plan types.BootstrapPlan, poolID string) {
	if e.store == nil || cfg.WalletAddress == "" {
		return
	}
	position := types.Position{
		WalletAddress: cfg.WalletAddress,
		PoolID:        poolID,
		Shares:        poolmath.DepositShareEstimate(plan.AmountA, plan.AmountB, 0, 0, 0),
	}
	if err := e.store.SavePosition(position); err != nil {
		e.logger.Error().
			Err(err).
			Str("wallet", cfg.WalletAddress).
			Str("poolID", poolID).
			Msg("Failed to record bootstrap position")
	}
}

// depositOperation converts a successful plan into a pool deposit operation
// with price bounds derived from the configured slippage tolerance.
func depositOperation(cfg types.BootstrapConfig, plan types.BootstrapPlan) (ledger.Operation, error) {
	maxAmountA, err := utils.FormatLedgerAmount(plan.AmountA)
	if err != nil {
		return ledger.Operation{}, err
	}
	maxAmountB, err := utils.FormatLedgerAmount(plan.AmountB)
	if err != nil {
		return ledger.Operation{}, err
	}

	price := 0.0
	if plan.AmountA > 0 {
		price = plan.AmountB / plan.AmountA
	}
	tolerance := cfg.MaxSlippagePercent / 100
	minPrice, err := utils.FormatLedgerAmount(price * (1 - tolerance))
	if err != nil {
		return ledger.Operation{}, err
	}
	maxPrice, err := utils.FormatLedgerAmount(price * (1 + tolerance))
	if err != nil {
		return ledger.Operation{}, err
	}

	assetA, assetB, _ := types.SortAssets(cfg.AssetA, cfg.AssetB)
	return ledger.Operation{
		Type:       "liquidity_pool_deposit",
		PoolID:     types.DerivePoolID(assetA, assetB, discovery.FeeTiers[0]),
		MaxAmountA: maxAmountA,
		MaxAmountB: maxAmountB,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
	}, nil
}

// RunLoop starts the periodic refresh loop: each cycle re-discovers every
// tracked pair and, when persistence is enabled, upserts the snapshots into
// the metadata store. Blocks until the context is cancelled.
func (e *Engine) RunLoop(ctx context.Context, interval time.Duration) {
	e.logger.Info().
		Dur("interval", interval).
		Int("trackedPairs", len(e.trackedPairs)).
		Msg("Starting engine refresh loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	e.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("Engine loop stopped due to context cancellation")
			return
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle refreshes every tracked pair once.
func (e *Engine) RunCycle(ctx context.Context) {
	cycleID := uuid.NewString()
	cycleLogger := e.logger.With().Str("cycleID", cycleID).Logger()
	cycleLogger.Info().Msg("Refresh cycle starting")

	refreshed := 0
	for _, pair := range e.trackedPairs {
		sources, err := e.discoverer.DiscoverLiquiditySources(ctx, pair.AssetA, pair.AssetB)
		if err != nil {
			cycleLogger.Error().
				Err(err).
				Str("assetA", pair.AssetA.String()).
				Str("assetB", pair.AssetB.String()).
				Msg("Pair refresh failed")
			continue
		}

		if e.store != nil {
			for _, source := range sources {
				if err := e.store.UpsertPoolRecord(source); err != nil {
					cycleLogger.Error().
						Err(err).
						Str("poolID", source.PoolID).
						Msg("Failed to persist pool record")
				}
			}
		}
		refreshed += len(sources)
	}

	cycleLogger.Info().
		Int("sourcesRefreshed", refreshed).
		Msg("Refresh cycle completed")
}
