package engine

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-dex/lar/internal/ledger"
	"github.com/meridian-dex/lar/internal/types"
)

// emptyQuery reports every pool as absent.
type emptyQuery struct{}

func (emptyQuery) GetPool(ctx context.Context, poolID string) (ledger.PoolSnapshot, error) {
	return ledger.PoolSnapshot{}, ledger.ErrPoolNotFound
}

type passthroughSigner struct{}

func (passthroughSigner) Sign(tx []byte) ([]byte, error) { return tx, nil }

type receiptCall struct {
	plan   types.BootstrapPlan
	target float64
	txHash string
}

// recordingStore captures every persistence call for inspection.
type recordingStore struct {
	pools     []types.LiquiditySource
	receipts  []receiptCall
	positions []types.Position
}

func (s *recordingStore) UpsertPoolRecord(source types.LiquiditySource) error {
	s.pools = append(s.pools, source)
	return nil
}

func (s *recordingStore) SaveBootstrapReceipt(plan types.BootstrapPlan, targetLiquidityUSD float64, txHash string) (int64, error) {
	s.receipts = append(s.receipts, receiptCall{plan: plan, target: targetLiquidityUSD, txHash: txHash})
	return int64(len(s.receipts)), nil
}

func (s *recordingStore) SavePosition(position types.Position) error {
	s.positions = append(s.positions, position)
	return nil
}

func testPair(t *testing.T) (types.Asset, types.Asset) {
	t.Helper()
	usdc, err := types.NewAsset("USDC", "GISSUER")
	require.NoError(t, err)
	return types.NativeAsset(), usdc
}

func seededSource(assetA, assetB types.Asset) types.LiquiditySource {
	return types.LiquiditySource{
		PoolID:      types.DerivePoolID(assetA, assetB, 30),
		Kind:        types.SourceLedgerNative,
		AssetA:      assetA,
		AssetB:      assetB,
		ReserveA:    10000,
		ReserveB:    20000,
		TotalShares: 14000,
		FeeBps:      30,
		TVL:         30000,
		Price:       2.0,
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Network: "testnet"})
	assert.Error(t, err)

	_, err = New(Config{QueryClient: emptyQuery{}, Network: "devnet"})
	assert.Error(t, err)

	eng, err := New(Config{QueryClient: emptyQuery{}, Network: "testnet"})
	require.NoError(t, err)
	assert.NotNil(t, eng)
}

func TestTriggerInitialLiquidityFailedPlan(t *testing.T) {
	store := &recordingStore{}
	eng, err := New(Config{QueryClient: emptyQuery{}, Network: "testnet", Store: store})
	require.NoError(t, err)

	assetA, assetB := testPair(t)
	plan, result, err := eng.TriggerInitialLiquidity(context.Background(), types.BootstrapConfig{
		AssetA:             assetA,
		AssetB:             assetB,
		TargetLiquidityUSD: 10000,
		MaxSlippagePercent: 1,
	}, passthroughSigner{})

	// No sources means a failed plan, surfaced as a result rather than an error.
	require.NoError(t, err)
	assert.False(t, plan.Success)
	assert.Nil(t, result)

	// The failed plan still leaves a receipt.
	require.Len(t, store.receipts, 1)
	assert.False(t, store.receipts[0].plan.Success)
	assert.Empty(t, store.receipts[0].txHash)
	assert.Empty(t, store.positions)
}

func TestTriggerInitialLiquidityPlanOnly(t *testing.T) {
	store := &recordingStore{}
	eng, err := New(Config{QueryClient: emptyQuery{}, Network: "testnet", Store: store})
	require.NoError(t, err)

	assetA, assetB := testPair(t)
	plan, result, err := eng.TriggerInitialLiquidity(context.Background(), types.BootstrapConfig{
		AssetA:             assetA,
		AssetB:             assetB,
		TargetLiquidityUSD: 10000,
		MaxSlippagePercent: 1,
		Sources:            []types.LiquiditySource{seededSource(assetA, assetB)},
	}, nil)

	require.NoError(t, err)
	assert.True(t, plan.Success)
	assert.Nil(t, result, "no signer means plan-only")

	// Plan-only runs leave a receipt without a transaction hash.
	require.Len(t, store.receipts, 1)
	assert.Equal(t, plan.PlanID, store.receipts[0].plan.PlanID)
	assert.Equal(t, 10000.0, store.receipts[0].target)
	assert.Empty(t, store.receipts[0].txHash)
	assert.Empty(t, store.positions, "nothing was deposited, so no position")
}

func TestTriggerInitialLiquidityExecution(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hash": "cafebabe"}`))
	}))
	defer server.Close()

	txClient, err := ledger.NewTxClient(server.URL, "testnet")
	require.NoError(t, err)

	store := &recordingStore{}
	eng, err := New(Config{QueryClient: emptyQuery{}, TxClient: txClient, Network: "testnet", Store: store})
	require.NoError(t, err)

	assetA, assetB := testPair(t)
	plan, result, err := eng.TriggerInitialLiquidity(context.Background(), types.BootstrapConfig{
		AssetA:             assetA,
		AssetB:             assetB,
		TargetLiquidityUSD: 10000,
		MaxSlippagePercent: 1,
		WalletAddress:      "GWALLET",
		Sources:            []types.LiquiditySource{seededSource(assetA, assetB)},
	}, passthroughSigner{})

	require.NoError(t, err)
	assert.True(t, plan.Success)
	require.NotNil(t, result)
	assert.Equal(t, "cafebabe", result.Hash)

	// The executed deposit leaves a receipt carrying the tx hash and books
	// the depositor's estimated first-deposit shares.
	require.Len(t, store.receipts, 1)
	assert.Equal(t, "cafebabe", store.receipts[0].txHash)

	require.Len(t, store.positions, 1)
	position := store.positions[0]
	assert.Equal(t, "GWALLET", position.WalletAddress)
	assert.Equal(t, types.DerivePoolID(assetA, assetB, 30), position.PoolID)
	assert.InDelta(t, math.Sqrt(plan.AmountA*plan.AmountB), position.Shares, 1e-9)
}

// poolQuery serves a fixed snapshot map keyed by pool id.
type poolQuery struct {
	pools map[string]ledger.PoolSnapshot
}

func (q poolQuery) GetPool(_ context.Context, poolID string) (ledger.PoolSnapshot, error) {
	snapshot, ok := q.pools[poolID]
	if !ok {
		return ledger.PoolSnapshot{}, ledger.ErrPoolNotFound
	}
	return snapshot, nil
}

func TestRunCyclePersistsSnapshots(t *testing.T) {
	assetA, assetB := testPair(t)
	poolID := types.DerivePoolID(assetA, assetB, 30)
	query := poolQuery{pools: map[string]ledger.PoolSnapshot{
		poolID: {
			ID:          poolID,
			FeeBps:      30,
			TotalShares: "1414.2135623",
			Reserves: []ledger.ReserveBalance{
				{Asset: assetA.String(), Amount: "1000.0000000"},
				{Asset: assetB.String(), Amount: "2000.0000000"},
			},
		},
	}}

	store := &recordingStore{}
	eng, err := New(Config{
		QueryClient:  query,
		Network:      "testnet",
		TrackedPairs: []AssetPair{{AssetA: assetA, AssetB: assetB}},
		Store:        store,
	})
	require.NoError(t, err)

	eng.RunCycle(context.Background())

	require.Len(t, store.pools, 1)
	assert.Equal(t, poolID, store.pools[0].PoolID)
	assert.InDelta(t, 3000.0, store.pools[0].TVL, 1e-9)
}

func TestTriggerInitialLiquidityMissingTxClient(t *testing.T) {
	eng, err := New(Config{QueryClient: emptyQuery{}, Network: "testnet"})
	require.NoError(t, err)

	assetA, assetB := testPair(t)
	plan, result, err := eng.TriggerInitialLiquidity(context.Background(), types.BootstrapConfig{
		AssetA:             assetA,
		AssetB:             assetB,
		TargetLiquidityUSD: 10000,
		MaxSlippagePercent: 1,
		Sources:            []types.LiquiditySource{seededSource(assetA, assetB)},
	}, passthroughSigner{})

	require.Error(t, err)
	assert.True(t, plan.Success, "plan is still surfaced when execution cannot run")
	assert.Nil(t, result)
}
