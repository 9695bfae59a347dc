/*

This file contains pool discovery: for an unordered asset pair, produce the
current set of liquidity sources visible to the system. Native pools are
enumerated across the fixed fee tiers; external adapters are queried after.
An individual missing or failing lookup degrades the result set, it never
fails the call.

*/

package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meridian-dex/lar/internal/ledger"
	"github.com/meridian-dex/lar/internal/logger"
	"github.com/meridian-dex/lar/internal/poolmath"
	"github.com/meridian-dex/lar/internal/types"
	"github.com/meridian-dex/lar/internal/utils"
)

// FeeTiers is the fixed set of native pool fee tiers, in basis points.
var FeeTiers = []int{30, 100, 300}

var ErrIdenticalAssets = errors.New("asset pair must contain two distinct assets")

// LedgerQuery is the narrow read interface discovery needs from the ledger
// query service.
type LedgerQuery interface {
	GetPool(ctx context.Context, poolID string) (ledger.PoolSnapshot, error)
}

// ExternalAdapter discovers sources outside the ledger's native pools.
// Adapters return records in the same LiquiditySource shape so the rest of
// the system stays source-agnostic.
type ExternalAdapter interface {
	Name() string
	Discover(ctx context.Context, assetA, assetB types.Asset) ([]types.LiquiditySource, error)
}

// Discoverer enumerates liquidity sources for asset pairs.
type Discoverer struct {
	query    LedgerQuery
	adapters []ExternalAdapter
	logger   zerolog.Logger
}

// New builds a Discoverer over the given query service and optional external
// adapters.
func New(query LedgerQuery, adapters ...ExternalAdapter) (*Discoverer, error) {
	if query == nil {
		return nil, errors.New("ledger query client cannot be nil")
	}
	return &Discoverer{
		query:    query,
		adapters: adapters,
		logger:   logger.GetForComponent("pool_discovery"),
	}, nil
}

// DiscoverLiquiditySources returns every source currently visible for the
// pair. Results reflect ledger state at call time; nothing is cached across
// calls. An empty slice means no pools exist yet and is a valid outcome.
func (d *Discoverer) DiscoverLiquiditySources(ctx context.Context, assetA, assetB types.Asset) ([]types.LiquiditySource, error) {
	if assetA.Equal(assetB) {
		return nil, ErrIdenticalAssets
	}

	first, second, _ := types.SortAssets(assetA, assetB)
	sources := make([]types.LiquiditySource, 0, len(FeeTiers))

	for _, feeBps := range FeeTiers {
		poolID := types.DerivePoolID(first, second, feeBps)

		snapshot, err := d.query.GetPool(ctx, poolID)
		if err != nil {
			if errors.Is(err, ledger.ErrPoolNotFound) {
				d.logger.Debug().
					Str("poolID", poolID).
					Int("feeBps", feeBps).
					Msg("No pool at this fee tier")
			} else {
				// Transport failures degrade discovery to fewer sources.
				d.logger.Warn().
					Err(err).
					Str("poolID", poolID).
					Int("feeBps", feeBps).
					Msg("Pool lookup failed, treating tier as absent")
			}
			continue
		}

		source, err := sourceFromSnapshot(poolID, first, second, feeBps, snapshot)
		if err != nil {
			d.logger.Warn().
				Err(err).
				Str("poolID", poolID).
				Msg("Discarding malformed pool snapshot")
			continue
		}

		d.logger.Debug().
			Str("poolID", poolID).
			Int("feeBps", feeBps).
			Float64("tvl", source.TVL).
			Float64("price", source.Price).
			Msg("Discovered native pool")

		sources = append(sources, source)
	}

	for _, adapter := range d.adapters {
		external, err := adapter.Discover(ctx, first, second)
		if err != nil {
			d.logger.Warn().
				Err(err).
				Str("adapter", adapter.Name()).
				Msg("External adapter failed, skipping its sources")
			continue
		}
		sources = append(sources, external...)
	}

	d.logger.Info().
		Str("assetA", first.String()).
		Str("assetB", second.String()).
		Int("sourceCount", len(sources)).
		Msg("Discovery complete")

	return sources, nil
}

// GetAggregatedPrice returns the TVL-weighted average price across all
// discovered sources for the pair, with the max-minus-min spread. Zero
// sources yields a zero result, not an error.
func (d *Discoverer) GetAggregatedPrice(ctx context.Context, assetA, assetB types.Asset) (types.AggregatedPrice, error) {
	sources, err := d.DiscoverLiquiditySources(ctx, assetA, assetB)
	if err != nil {
		return types.AggregatedPrice{}, err
	}
	return AggregatePrice(sources), nil
}

// AggregatePrice computes the TVL-weighted price view over an already
// discovered source set.
func AggregatePrice(sources []types.LiquiditySource) types.AggregatedPrice {
	if len(sources) == 0 {
		return types.AggregatedPrice{}
	}

	var weightedSum, totalTVL float64
	minPrice, maxPrice := sources[0].Price, sources[0].Price
	for _, source := range sources {
		weightedSum += source.Price * source.TVL
		totalTVL += source.TVL
		if source.Price < minPrice {
			minPrice = source.Price
		}
		if source.Price > maxPrice {
			maxPrice = source.Price
		}
	}

	price := 0.0
	if totalTVL > 0 {
		price = weightedSum / totalTVL
	}

	return types.AggregatedPrice{
		Price:       price,
		SourceCount: len(sources),
		Spread:      maxPrice - minPrice,
	}
}

// sourceFromSnapshot converts the external pool representation into a
// LiquiditySource with derived price and TVL. Reserves are matched to the
// canonical pair by asset identity; the snapshot may list them in either
// order.
func sourceFromSnapshot(poolID string, assetA, assetB types.Asset, feeBps int, snapshot ledger.PoolSnapshot) (types.LiquiditySource, error) {
	if len(snapshot.Reserves) != 2 {
		return types.LiquiditySource{}, fmt.Errorf("expected 2 reserves, got %d", len(snapshot.Reserves))
	}
	if snapshot.FeeBps != 0 && snapshot.FeeBps != feeBps {
		return types.LiquiditySource{}, fmt.Errorf("snapshot fee %d does not match tier %d", snapshot.FeeBps, feeBps)
	}

	var reserveA, reserveB float64
	var matchedA, matchedB bool
	for _, reserve := range snapshot.Reserves {
		amount, err := utils.ParseLedgerAmount(reserve.Amount)
		if err != nil {
			return types.LiquiditySource{}, fmt.Errorf("reserve %s has invalid amount: %w", reserve.Asset, err)
		}
		switch reserve.Asset {
		case assetA.String():
			reserveA, matchedA = amount, true
		case assetB.String():
			reserveB, matchedB = amount, true
		default:
			return types.LiquiditySource{}, fmt.Errorf("reserve asset %s does not belong to the pair", reserve.Asset)
		}
	}
	if !matchedA || !matchedB {
		return types.LiquiditySource{}, errors.New("snapshot reserves do not cover both pair assets")
	}

	totalShares, err := utils.ParseLedgerAmount(snapshot.TotalShares)
	if err != nil {
		return types.LiquiditySource{}, fmt.Errorf("invalid total shares: %w", err)
	}

	return types.LiquiditySource{
		PoolID:      poolID,
		Kind:        types.SourceLedgerNative,
		AssetA:      assetA,
		AssetB:      assetB,
		ReserveA:    reserveA,
		ReserveB:    reserveB,
		TotalShares: totalShares,
		FeeBps:      feeBps,
		TVL:         reserveA + reserveB,
		Price:       poolmath.SpotPrice(reserveA, reserveB),
	}, nil
}
