/*

This is a custom type for liquidity sources which contains all the state
needed for routing and planning against a discovered pool.

*/

package types

// SourceKind distinguishes where a liquidity source was discovered.
type SourceKind string

const (
	SourceLedgerNative SourceKind = "ledger-native"
	SourceExternal     SourceKind = "external"
)

// LiquiditySource is one discovered pool instance for an asset pair.
// Constructed fresh on every discovery call and never mutated; the next
// discovery snapshot supersedes it. Price and TVL are derived from the
// reserves at construction time, never set independently.
type LiquiditySource struct {
	PoolID      string     `json:"pool_id"`
	Kind        SourceKind `json:"source"`
	AssetA      Asset      `json:"asset_a"` // canonical order, AssetA sorts before AssetB
	AssetB      Asset      `json:"asset_b"`
	ReserveA    float64    `json:"reserve_a"`
	ReserveB    float64    `json:"reserve_b"`
	TotalShares float64    `json:"total_shares"`
	FeeBps      int        `json:"fee_bps"`
	TVL         float64    `json:"tvl"`   // reserveA + reserveB, unit convention per quote asset
	Price       float64    `json:"price"` // reserveB / reserveA, 0 when reserveA is 0
}

// RouteAllocation is one slice of an aggregated route.
type RouteAllocation struct {
	PoolID       string  `json:"pool_id"`
	InputAmount  float64 `json:"input_amount"`
	OutputAmount float64 `json:"output_amount"`
	PriceImpact  float64 `json:"price_impact"`
}

// AggregatedRoute is the immutable result of a routing computation.
type AggregatedRoute struct {
	Allocations        []RouteAllocation `json:"allocations"`
	TotalInput         float64           `json:"total_input"`
	TotalOutput        float64           `json:"total_output"`
	AveragePriceImpact float64           `json:"average_price_impact"`
	EffectivePrice     float64           `json:"effective_price"` // totalInput / totalOutput, 0 when totalOutput is 0
}

// PoolHealth is a derived score for one liquidity source snapshot.
type PoolHealth struct {
	Healthy bool     `json:"healthy"`
	Score   int      `json:"score"` // 0 to 100
	Issues  []string `json:"issues,omitempty"`
}

// AggregatedPrice is the TVL-weighted price view across all discovered
// sources for a pair.
type AggregatedPrice struct {
	Price       float64 `json:"price"`
	SourceCount int     `json:"source_count"`
	Spread      float64 `json:"spread"` // max source price minus min source price
}
