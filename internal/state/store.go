// ./internal/state/store.go
package state

import "github.com/meridian-dex/lar/internal/types"

// Store adapts the package-level persistence functions into a value that can
// be injected as a collaborator. All methods operate on the shared connection
// pool initialized by InitDB.
type Store struct{}

// NewStore returns a Store over the shared connection pool.
func NewStore() Store {
	return Store{}
}

func (Store) UpsertPoolRecord(source types.LiquiditySource) error {
	return UpsertPoolRecord(source)
}

func (Store) SaveBootstrapReceipt(plan types.BootstrapPlan, targetLiquidityUSD float64, txHash string) (int64, error) {
	return SaveBootstrapReceipt(plan, targetLiquidityUSD, txHash)
}

func (Store) SavePosition(position types.Position) error {
	return SavePosition(position)
}
