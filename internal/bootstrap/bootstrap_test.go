package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-dex/lar/internal/discovery"
	"github.com/meridian-dex/lar/internal/ledger"
	"github.com/meridian-dex/lar/internal/types"
)

type emptyLedger struct{}

func (emptyLedger) GetPool(context.Context, string) (ledger.PoolSnapshot, error) {
	return ledger.PoolSnapshot{}, ledger.ErrPoolNotFound
}

func newPlanner(t *testing.T) *Planner {
	t.Helper()
	d, err := discovery.New(emptyLedger{})
	require.NoError(t, err)
	p, err := New(d)
	require.NoError(t, err)
	return p
}

func testConfig(t *testing.T, target float64, sources ...types.LiquiditySource) types.BootstrapConfig {
	t.Helper()
	usdc, err := types.NewAsset("USDC", "GAIBCUSDCISSUER")
	require.NoError(t, err)
	return types.BootstrapConfig{
		AssetA:             types.NativeAsset(),
		AssetB:             usdc,
		TargetLiquidityUSD: target,
		MaxSlippagePercent: 1.0,
		Sources:            sources,
	}
}

func TestBootstrapNoSources(t *testing.T) {
	plan := newPlanner(t).BootstrapNewPool(context.Background(), testConfig(t, 10_000))

	assert.False(t, plan.Success)
	assert.Zero(t, plan.AmountA)
	assert.Zero(t, plan.AmountB)
	assert.Empty(t, plan.SourcesUsed)
	assert.Contains(t, plan.Message, "no sources available")
	assert.NotEmpty(t, plan.PlanID)
}

func TestBootstrapInsufficientLiquidity(t *testing.T) {
	src := types.LiquiditySource{PoolID: "p1", TVL: 4000, Price: 2}
	plan := newPlanner(t).BootstrapNewPool(context.Background(), testConfig(t, 10_000, src))

	assert.False(t, plan.Success)
	assert.Zero(t, plan.AmountA)
	assert.Zero(t, plan.AmountB)
	assert.Contains(t, plan.Message, "insufficient liquidity")
	assert.Contains(t, plan.Message, "6000.00", "message names the shortfall")
}

func TestBootstrapProportionalAllocation(t *testing.T) {
	sources := []types.LiquiditySource{
		{PoolID: "p1", TVL: 7500, Price: 2.0},
		{PoolID: "p2", TVL: 2500, Price: 2.5},
	}
	plan := newPlanner(t).BootstrapNewPool(context.Background(), testConfig(t, 8000, sources...))

	require.True(t, plan.Success, plan.Message)
	assert.Equal(t, []string{"p1", "p2"}, plan.SourcesUsed)

	// p1: 8000 * 0.75 * 0.5 = 3000 of B, 1500 of A.
	// p2: 8000 * 0.25 * 0.5 = 1000 of B, 400 of A.
	assert.InDelta(t, 4000.0, plan.AmountB, 1e-9)
	assert.InDelta(t, 1900.0, plan.AmountA, 1e-9)
}

func TestBootstrapSingleSourceFullProportion(t *testing.T) {
	src := types.LiquiditySource{PoolID: "solo", TVL: 20_000, Price: 4}
	plan := newPlanner(t).BootstrapNewPool(context.Background(), testConfig(t, 10_000, src))

	require.True(t, plan.Success)
	assert.InDelta(t, 5000.0, plan.AmountB, 1e-9)
	assert.InDelta(t, 1250.0, plan.AmountA, 1e-9)
}

func TestBootstrapRejectsNonPositiveTarget(t *testing.T) {
	plan := newPlanner(t).BootstrapNewPool(context.Background(), testConfig(t, 0))
	assert.False(t, plan.Success)
	assert.Contains(t, plan.Message, "must be positive")
}

func TestBootstrapSkipsPricelessSources(t *testing.T) {
	sources := []types.LiquiditySource{
		{PoolID: "dead", TVL: 5000, Price: 0},
		{PoolID: "live", TVL: 5000, Price: 2},
	}
	plan := newPlanner(t).BootstrapNewPool(context.Background(), testConfig(t, 6000, sources...))

	require.True(t, plan.Success)
	assert.Equal(t, []string{"live"}, plan.SourcesUsed)
	assert.InDelta(t, 1500.0, plan.AmountB, 1e-9)
}
