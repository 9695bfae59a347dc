package ledger

// PoolSnapshot is the external representation of a liquidity pool as served
// by the ledger query service.
type PoolSnapshot struct {
	ID          string           `json:"id"`
	FeeBps      int              `json:"fee_bp"`
	TotalShares string           `json:"total_shares"`
	Reserves    []ReserveBalance `json:"reserves"`
}

// ReserveBalance is one side of a pool's reserves. Asset uses the canonical
// string form: "native" or "CODE:ISSUER".
type ReserveBalance struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// BalanceRecord is one entry of an account's balance list.
type BalanceRecord struct {
	AssetType       string `json:"asset_type"`
	AssetCode       string `json:"asset_code,omitempty"`
	AssetIssuer     string `json:"asset_issuer,omitempty"`
	Balance         string `json:"balance"`
	LiquidityPoolID string `json:"liquidity_pool_id,omitempty"`
}

// PriceLevel is one rung of an orderbook side.
type PriceLevel struct {
	Price  string `json:"price"`
	Amount string `json:"amount"`
}

// Orderbook is the bid/ask view for an asset pair.
type Orderbook struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}
