package poolmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-dex/lar/internal/types"
)

func TestSpotPrice(t *testing.T) {
	assert.Equal(t, 2.0, SpotPrice(1000, 2000))
	assert.Equal(t, 0.5, SpotPrice(2000, 1000))
	assert.Equal(t, 0.0, SpotPrice(0, 2000), "empty input reserve has a defined zero price")
}

func TestSwapOutputRegression(t *testing.T) {
	// 1000 in against a 1M/1M pool at 30 bps: a bit under 1000 out
	// (fee plus curvature), bounded below by 990.
	out := SwapOutput(1000, 1_000_000, 1_000_000, 30)
	assert.InDelta(t, 996.5, out, 0.5)
	assert.Less(t, out, 1000.0)
	assert.Greater(t, out, 990.0)
}

func TestSwapOutputFeeBound(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		rIn    float64
		rOut   float64
		feeBps int
	}{
		{"small trade", 10, 50_000, 80_000, 30},
		{"mid tier", 2_500, 100_000, 100_000, 100},
		{"high tier", 40_000, 300_000, 900_000, 300},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := SwapOutput(tc.amount, tc.rIn, tc.rOut, tc.feeBps)
			naive := tc.amount * tc.rOut / tc.rIn
			assert.Less(t, out, naive, "fee plus curvature must undercut the naive quote")
			assert.Greater(t, out, 0.0)
		})
	}
}

func TestSwapOutputMonotonicity(t *testing.T) {
	prev := 0.0
	for amount := 100.0; amount <= 10_000; amount += 100 {
		out := SwapOutput(amount, 1_000_000, 2_000_000, 30)
		require.Greater(t, out, prev, "output must increase with input amount")
		prev = out
	}

	prev = 0.0
	for reserve := 100_000.0; reserve <= 1_000_000; reserve += 100_000 {
		out := SwapOutput(1000, 1_000_000, reserve, 30)
		require.Greater(t, out, prev, "output must increase with output reserve")
		prev = out
	}
}

func TestSwapQuoteImpact(t *testing.T) {
	out, impact := SwapQuote(1000, 1_000_000, 1_000_000, 30)
	assert.Greater(t, impact, 0.0)
	assert.Less(t, impact, 0.01)

	spot := SpotPrice(1_000_000, 1_000_000)
	assert.InDelta(t, 1-(out/1000)/spot, impact, 1e-12)

	// Deeper pool, same trade: less impact.
	_, deepImpact := SwapQuote(1000, 10_000_000, 10_000_000, 30)
	assert.Less(t, deepImpact, impact)
}

func TestSwapQuoteZeroGuards(t *testing.T) {
	_, impact := SwapQuote(1000, 0, 1_000_000, 30)
	assert.Equal(t, 0.0, impact, "zero spot price must not produce NaN impact")
	assert.False(t, math.IsNaN(impact))
}

func TestDepositShareEstimateFirstDeposit(t *testing.T) {
	shares := DepositShareEstimate(100, 400, 0, 0, 0)
	assert.Equal(t, 200.0, shares, "first deposit follows the geometric-mean rule")
}

func TestDepositShareEstimateLimitingSide(t *testing.T) {
	// B is the binding side: 150/2000 = 0.075 beats 100/1000 = 0.1.
	shares := DepositShareEstimate(100, 150, 1000, 2000, 1000)
	assert.InDelta(t, 75.0, shares, 1e-9)

	// Symmetric case where A binds instead.
	shares = DepositShareEstimate(50, 200, 1000, 2000, 1000)
	assert.InDelta(t, 50.0, shares, 1e-9)
}

func TestWithdrawEstimate(t *testing.T) {
	a, b := WithdrawEstimate(50, 1000, 1000, 2000)
	assert.InDelta(t, 50.0, a, 1e-9)
	assert.InDelta(t, 100.0, b, 1e-9)

	a, b = WithdrawEstimate(50, 0, 1000, 2000)
	assert.Equal(t, 0.0, a)
	assert.Equal(t, 0.0, b)
}

func TestDepositWithdrawRoundTrip(t *testing.T) {
	// Depositing into an empty pool then withdrawing every share returns
	// exactly the deposited amounts.
	amountA, amountB := 123.0, 456.0
	shares := DepositShareEstimate(amountA, amountB, 0, 0, 0)
	require.Greater(t, shares, 0.0)

	gotA, gotB := WithdrawEstimate(shares, shares, amountA, amountB)
	assert.InDelta(t, amountA, gotA, 1e-9)
	assert.InDelta(t, amountB, gotB, 1e-9)
}

func TestSharePercentage(t *testing.T) {
	assert.Equal(t, 5.0, SharePercentage(50, 1000))
	assert.Equal(t, 0.0, SharePercentage(50, 0))
}

func TestCheckPoolHealth(t *testing.T) {
	healthy := CheckPoolHealth(types.LiquiditySource{
		ReserveA: 5000, ReserveB: 5000, TotalShares: 1000, TVL: 10000,
	})
	assert.True(t, healthy.Healthy)
	assert.Equal(t, 100, healthy.Score)
	assert.Empty(t, healthy.Issues)

	// Low TVL plus zero shares, balanced reserves: 100 - 30 - 50.
	sick := CheckPoolHealth(types.LiquiditySource{
		ReserveA: 250, ReserveB: 250, TotalShares: 0, TVL: 500,
	})
	assert.False(t, sick.Healthy)
	assert.Equal(t, 20, sick.Score)
	assert.Len(t, sick.Issues, 2)
}

func TestCheckPoolHealthImbalanceAndFloor(t *testing.T) {
	imbalanced := CheckPoolHealth(types.LiquiditySource{
		ReserveA: 100_000, ReserveB: 100, TotalShares: 1000, TVL: 100_100,
	})
	assert.Equal(t, 80, imbalanced.Score)
	assert.True(t, imbalanced.Healthy)

	// Everything wrong at once still floors at 0.
	dead := CheckPoolHealth(types.LiquiditySource{})
	assert.Equal(t, 0, dead.Score)
	assert.False(t, dead.Healthy)
}
