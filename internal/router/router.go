/*

This file contains the routing logic over a discovered source set: pick the
single best source for a trade, or split the trade across the deepest
sources. The split policy is equal allocation across the selected sources;
ranking uses the impact each source would take at the full amount as a depth
proxy. This is a deliberate simplification, not a marginal-price-equalizing
optimum, and downstream expectations are defined by it.

*/

package router

import (
	"sort"

	"github.com/meridian-dex/lar/internal/logger"
	"github.com/meridian-dex/lar/internal/poolmath"
	"github.com/meridian-dex/lar/internal/types"
)

var routeLogger = logger.GetForComponent("router")

// FindBestSource returns the source yielding the strictly greatest output
// for swapping the full input amount of AssetA, or nil when the source set
// is empty or the amount is not positive. Ties keep the first-encountered
// source.
func FindBestSource(sources []types.LiquiditySource, inputAmount float64) *types.LiquiditySource {
	if len(sources) == 0 || inputAmount <= 0 {
		return nil
	}

	best := 0
	bestOutput := poolmath.SwapOutput(inputAmount, sources[0].ReserveA, sources[0].ReserveB, sources[0].FeeBps)
	for i := 1; i < len(sources); i++ {
		output := poolmath.SwapOutput(inputAmount, sources[i].ReserveA, sources[i].ReserveB, sources[i].FeeBps)
		if output > bestOutput {
			best = i
			bestOutput = output
		}
	}

	routeLogger.Debug().
		Str("poolID", sources[best].PoolID).
		Float64("inputAmount", inputAmount).
		Float64("outputAmount", bestOutput).
		Msg("Selected best single source")

	selected := sources[best]
	return &selected
}

// CalculateOptimalRoute splits the input amount equally across the
// min(maxSplits, sourceCount) sources with the lowest full-amount price
// impact. Zero sources or a non-positive amount yields an all-zero route
// with an empty allocation list, not an error.
func CalculateOptimalRoute(sources []types.LiquiditySource, inputAmount float64, maxSplits int) types.AggregatedRoute {
	if len(sources) == 0 || inputAmount <= 0 || maxSplits <= 0 {
		return types.AggregatedRoute{Allocations: []types.RouteAllocation{}}
	}

	// Rank ascending by the impact each source would incur absorbing the
	// full amount alone. Stable sort keeps discovery order on ties.
	type rankedSource struct {
		source     types.LiquiditySource
		fullImpact float64
	}
	ranked := make([]rankedSource, 0, len(sources))
	for _, source := range sources {
		_, impact := poolmath.SwapQuote(inputAmount, source.ReserveA, source.ReserveB, source.FeeBps)
		ranked = append(ranked, rankedSource{source: source, fullImpact: impact})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].fullImpact < ranked[j].fullImpact
	})

	splits := maxSplits
	if len(ranked) < splits {
		splits = len(ranked)
	}
	selected := make([]types.LiquiditySource, 0, splits)
	for _, r := range ranked[:splits] {
		selected = append(selected, r.source)
	}
	perSource := inputAmount / float64(splits)

	allocations := make([]types.RouteAllocation, 0, splits)
	var totalInput, totalOutput, impactSum float64
	for _, source := range selected {
		output, impact := poolmath.SwapQuote(perSource, source.ReserveA, source.ReserveB, source.FeeBps)
		allocations = append(allocations, types.RouteAllocation{
			PoolID:       source.PoolID,
			InputAmount:  perSource,
			OutputAmount: output,
			PriceImpact:  impact,
		})
		totalInput += perSource
		totalOutput += output
		impactSum += impact
	}

	effectivePrice := 0.0
	if totalOutput > 0 {
		effectivePrice = totalInput / totalOutput
	}

	route := types.AggregatedRoute{
		Allocations:        allocations,
		TotalInput:         totalInput,
		TotalOutput:        totalOutput,
		AveragePriceImpact: impactSum / float64(splits),
		EffectivePrice:     effectivePrice,
	}

	routeLogger.Debug().
		Int("splits", splits).
		Float64("totalInput", totalInput).
		Float64("totalOutput", totalOutput).
		Float64("averagePriceImpact", route.AveragePriceImpact).
		Msg("Computed aggregated route")

	return route
}
