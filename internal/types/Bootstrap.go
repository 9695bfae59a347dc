/*

This file contains the types for bootstrap liquidity planning: the request
for seeding a newly created pool and the advisory plan produced for it.

*/

package types

import "time"

// BootstrapConfig is a request to plan initial liquidity provisioning for a
// newly created pool, drawn proportionally from existing discovered sources.
type BootstrapConfig struct {
	AssetA             Asset   `json:"asset_a"`
	AssetB             Asset   `json:"asset_b"`
	TargetLiquidityUSD float64 `json:"target_liquidity_usd"`
	MaxSlippagePercent float64 `json:"max_slippage_percent"`

	// WalletAddress optionally identifies the depositor; an executed
	// bootstrap records a share position for it.
	WalletAddress string `json:"wallet_address,omitempty"`

	// Candidate sources may be supplied by the caller; when empty the planner
	// runs its own discovery for the pair.
	Sources []LiquiditySource `json:"sources,omitempty"`
}

// BootstrapPlan is the advisory result of a bootstrap computation. Producing
// a plan never itself moves funds; execution is a separate step. All failure
// paths are structured results, never errors.
type BootstrapPlan struct {
	PlanID      string    `json:"plan_id"`
	Success     bool      `json:"success"`
	AmountA     float64   `json:"amount_a"` // planned total of AssetA
	AmountB     float64   `json:"amount_b"` // planned total of AssetB
	SourcesUsed []string  `json:"sources_used"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// Position is a wallet's share claim on one pool, kept for bookkeeping in
// the metadata store.
type Position struct {
	WalletAddress string  `json:"wallet_address"`
	PoolID        string  `json:"pool_id"`
	Shares        float64 `json:"shares"`
}
