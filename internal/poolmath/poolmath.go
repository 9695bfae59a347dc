/*

This file contains the constant-product math engine: pure, deterministic
functions over pool reserves. No I/O, no validation — callers (router,
planner) reject non-positive amounts before invoking these.

*/

package poolmath

import (
	"math"

	"github.com/meridian-dex/lar/internal/types"
)

const feeDenominatorBps = 10000.0

// SpotPrice returns reserveB/reserveA, or 0 when reserveA is 0. The zero
// return on an empty reserve is a defined policy, not an error.
func SpotPrice(reserveA, reserveB float64) float64 {
	if reserveA == 0 {
		return 0
	}
	return reserveB / reserveA
}

// SwapOutput computes the constant-product output for a swap with the fee
// deducted from the input before the exchange.
func SwapOutput(inputAmount, inputReserve, outputReserve float64, feeBps int) float64 {
	effectiveIn := inputAmount * (feeDenominatorBps - float64(feeBps)) / feeDenominatorBps
	return effectiveIn * outputReserve / (inputReserve + effectiveIn)
}

// SwapQuote computes the swap output together with its price impact. This is
// the single canonical impact calculation; every routing call site goes
// through it. Impact is 1 - executionPrice/spotPrice, defined as 0 when the
// spot price or input amount is 0.
func SwapQuote(inputAmount, inputReserve, outputReserve float64, feeBps int) (outputAmount, priceImpact float64) {
	outputAmount = SwapOutput(inputAmount, inputReserve, outputReserve, feeBps)
	spot := SpotPrice(inputReserve, outputReserve)
	if spot == 0 || inputAmount == 0 {
		return outputAmount, 0
	}
	executionPrice := outputAmount / inputAmount
	return outputAmount, 1 - executionPrice/spot
}

// DepositShareEstimate estimates the liquidity shares minted for a deposit.
// The first deposit into an empty pool follows the geometric-mean rule;
// otherwise the limiting side determines minted shares. The limiting-side
// rule is deliberately conservative to prevent one-sided deposit arbitrage.
func DepositShareEstimate(amountA, amountB, reserveA, reserveB, totalShares float64) float64 {
	if totalShares == 0 {
		return math.Sqrt(amountA * amountB)
	}
	ratioA := amountA / reserveA
	ratioB := amountB / reserveB
	if ratioB < ratioA {
		return ratioB * totalShares
	}
	return ratioA * totalShares
}

// WithdrawEstimate returns the proportional share of each reserve for
// redeeming the given shares, or (0, 0) when no shares are outstanding.
func WithdrawEstimate(shares, totalShares, reserveA, reserveB float64) (amountA, amountB float64) {
	if totalShares == 0 {
		return 0, 0
	}
	fraction := shares / totalShares
	return fraction * reserveA, fraction * reserveB
}

// SharePercentage returns the percentage of the pool the given shares
// represent, or 0 when no shares are outstanding.
func SharePercentage(userShares, totalShares float64) float64 {
	if totalShares == 0 {
		return 0
	}
	return userShares / totalShares * 100
}

// Health scoring thresholds.
const (
	minHealthyTVL     = 1000.0
	minReserveRatio   = 0.1
	maxReserveRatio   = 10.0
	healthyScoreFloor = 50
	lowTVLPenalty     = 30
	imbalancePenalty  = 20
	zeroSharesPenalty = 50
)

// CheckPoolHealth derives a 0-100 health score from one source snapshot.
func CheckPoolHealth(source types.LiquiditySource) types.PoolHealth {
	score := 100
	var issues []string

	if source.TVL < minHealthyTVL {
		score -= lowTVLPenalty
		issues = append(issues, "low liquidity")
	}

	balanced := false
	if source.ReserveA > 0 && source.ReserveB > 0 {
		ratio := source.ReserveA / source.ReserveB
		balanced = ratio >= minReserveRatio && ratio <= maxReserveRatio
	}
	if !balanced {
		score -= imbalancePenalty
		issues = append(issues, "reserves heavily imbalanced")
	}

	if source.TotalShares == 0 {
		score -= zeroSharesPenalty
		issues = append(issues, "no outstanding shares")
	}

	if score < 0 {
		score = 0
	}

	return types.PoolHealth{
		Healthy: score >= healthyScoreFloor,
		Score:   score,
		Issues:  issues,
	}
}
