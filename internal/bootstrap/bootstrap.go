/*

This file contains the bootstrap liquidity planner: given a target USD
amount for a newly created pair, compute a proportional allocation plan
across the sources already discovered for that pair. Planning is advisory
and never submits a transaction; every failure path is a structured plan
with Success=false, never an error.

*/

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meridian-dex/lar/internal/discovery"
	"github.com/meridian-dex/lar/internal/logger"
	"github.com/meridian-dex/lar/internal/types"
)

// pairedAssetFactor reserves half of the target value for the paired asset:
// each unit of USD-equivalent liquidity requires both sides of the pool.
const pairedAssetFactor = 0.5

// Planner computes bootstrap liquidity plans over discovered sources.
type Planner struct {
	discoverer *discovery.Discoverer
	logger     zerolog.Logger
}

// New builds a Planner over the given discoverer.
func New(discoverer *discovery.Discoverer) (*Planner, error) {
	if discoverer == nil {
		return nil, errors.New("discoverer cannot be nil")
	}
	return &Planner{
		discoverer: discoverer,
		logger:     logger.GetForComponent("bootstrap_planner"),
	}, nil
}

// BootstrapNewPool plans initial liquidity provisioning for the configured
// pair. Candidate sources from the config are used as-is when present;
// otherwise discovery runs for the pair at call time.
func (p *Planner) BootstrapNewPool(ctx context.Context, cfg types.BootstrapConfig) types.BootstrapPlan {
	plan := types.BootstrapPlan{
		PlanID:      uuid.NewString(),
		SourcesUsed: []string{},
		CreatedAt:   time.Now().UTC(),
	}

	if cfg.TargetLiquidityUSD <= 0 {
		plan.Message = fmt.Sprintf("target liquidity must be positive, got %.2f", cfg.TargetLiquidityUSD)
		return plan
	}

	// Plan amounts follow the canonical pair order so AmountA always refers
	// to the asset that sorts first, matching discovered sources.
	assetA, assetB, _ := types.SortAssets(cfg.AssetA, cfg.AssetB)

	sources := cfg.Sources
	if len(sources) == 0 {
		discovered, err := p.discoverer.DiscoverLiquiditySources(ctx, assetA, assetB)
		if err != nil {
			plan.Message = fmt.Sprintf("discovery failed: %v", err)
			return plan
		}
		sources = discovered
	}

	if len(sources) == 0 {
		p.logger.Info().
			Str("assetA", assetA.String()).
			Str("assetB", assetB.String()).
			Msg("Bootstrap aborted: no sources available")
		plan.Message = "no sources available: cannot bootstrap without a reference price"
		return plan
	}

	var totalAvailableLiquidity float64
	for _, source := range sources {
		totalAvailableLiquidity += source.TVL
	}

	if totalAvailableLiquidity < cfg.TargetLiquidityUSD {
		shortfall := cfg.TargetLiquidityUSD - totalAvailableLiquidity
		p.logger.Info().
			Float64("targetUSD", cfg.TargetLiquidityUSD).
			Float64("availableUSD", totalAvailableLiquidity).
			Float64("shortfallUSD", shortfall).
			Msg("Bootstrap aborted: insufficient liquidity")
		plan.Message = fmt.Sprintf("insufficient liquidity: target %.2f exceeds available %.2f (short %.2f)",
			cfg.TargetLiquidityUSD, totalAvailableLiquidity, shortfall)
		return plan
	}

	var amountA, amountB float64
	sourcesUsed := make([]string, 0, len(sources))
	for _, source := range sources {
		proportion := source.TVL / totalAvailableLiquidity
		if proportion > 1 {
			proportion = 1
		}

		amountFromSource := cfg.TargetLiquidityUSD * proportion * pairedAssetFactor
		if source.Price <= 0 {
			// A priceless source (empty A-side reserve) cannot contribute a
			// reference rate; it is counted in availability but not drawn on.
			p.logger.Warn().
				Str("poolID", source.PoolID).
				Msg("Skipping source with zero price during allocation")
			continue
		}

		amountB += amountFromSource
		amountA += amountFromSource / source.Price
		sourcesUsed = append(sourcesUsed, source.PoolID)

		p.logger.Debug().
			Str("poolID", source.PoolID).
			Float64("proportion", proportion).
			Float64("amountFromSource", amountFromSource).
			Msg("Allocated bootstrap slice from source")
	}

	if len(sourcesUsed) == 0 {
		plan.Message = "no usable sources: every candidate lacks a reference price"
		return plan
	}

	plan.Success = true
	plan.AmountA = amountA
	plan.AmountB = amountB
	plan.SourcesUsed = sourcesUsed
	plan.Message = fmt.Sprintf("planned %.7f of %s and %.7f of %s across %d sources",
		amountA, assetA.String(), amountB, assetB.String(), len(sourcesUsed))

	p.logger.Info().
		Str("planID", plan.PlanID).
		Float64("amountA", amountA).
		Float64("amountB", amountB).
		Int("sourceCount", len(sourcesUsed)).
		Msg("Bootstrap plan ready")

	return plan
}
