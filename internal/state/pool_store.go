// ./internal/state/pool_store.go
package state

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meridian-dex/lar/internal/types"
)

// PoolRecord is one persisted discovery snapshot row.
type PoolRecord struct {
	PoolID      string    `json:"pool_id"`
	SourceKind  string    `json:"source_kind"`
	AssetA      string    `json:"asset_a"`
	AssetB      string    `json:"asset_b"`
	FeeBps      int       `json:"fee_bps"`
	ReserveA    float64   `json:"reserve_a"`
	ReserveB    float64   `json:"reserve_b"`
	TotalShares float64   `json:"total_shares"`
	TVL         float64   `json:"tvl"`
	Price       float64   `json:"price"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpsertPoolRecord writes the latest discovery snapshot for a pool,
// replacing any previous row for the same pool id.
func UpsertPoolRecord(source types.LiquiditySource) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO pool_records (
			pool_id, source_kind, asset_a, asset_b, fee_bps,
			reserve_a, reserve_b, total_shares, tvl, price, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP)
		ON CONFLICT (pool_id) DO UPDATE SET
			reserve_a = EXCLUDED.reserve_a,
			reserve_b = EXCLUDED.reserve_b,
			total_shares = EXCLUDED.total_shares,
			tvl = EXCLUDED.tvl,
			price = EXCLUDED.price,
			updated_at = CURRENT_TIMESTAMP;
	`

	_, err := DB.Exec(query,
		source.PoolID, string(source.Kind), source.AssetA.String(), source.AssetB.String(), source.FeeBps,
		source.ReserveA, source.ReserveB, source.TotalShares, source.TVL, source.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pool record %s: %w", source.PoolID, err)
	}

	log.Debug().
		Str("pool_id", source.PoolID).
		Float64("tvl", source.TVL).
		Msg("Pool record upserted")

	return nil
}

// GetPoolRecords returns the most recently updated pool records.
func GetPoolRecords(limit int) ([]PoolRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT pool_id, source_kind, asset_a, asset_b, fee_bps,
		       reserve_a, reserve_b, total_shares, tvl, price, updated_at
		FROM pool_records
		ORDER BY updated_at DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pool records: %w", err)
	}
	defer rows.Close()

	var records []PoolRecord
	for rows.Next() {
		var record PoolRecord
		if err := rows.Scan(
			&record.PoolID, &record.SourceKind, &record.AssetA, &record.AssetB, &record.FeeBps,
			&record.ReserveA, &record.ReserveB, &record.TotalShares, &record.TVL, &record.Price, &record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pool record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pool record iteration failed: %w", err)
	}

	return records, nil
}

// SavePosition upserts a wallet's share position for one pool.
func SavePosition(position types.Position) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO positions (wallet_address, pool_id, shares, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (wallet_address, pool_id) DO UPDATE SET
			shares = EXCLUDED.shares,
			updated_at = CURRENT_TIMESTAMP;
	`

	_, err := DB.Exec(query, position.WalletAddress, position.PoolID, position.Shares)
	if err != nil {
		return fmt.Errorf("failed to save position for %s in pool %s: %w",
			position.WalletAddress, position.PoolID, err)
	}

	return nil
}

// GetPositionsByWallet returns all positions held by a wallet address.
func GetPositionsByWallet(walletAddress string) ([]types.Position, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT wallet_address, pool_id, shares
		FROM positions
		WHERE wallet_address = $1
		ORDER BY pool_id;
	`

	rows, err := DB.Query(query, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []types.Position
	for rows.Next() {
		var position types.Position
		if err := rows.Scan(&position.WalletAddress, &position.PoolID, &position.Shares); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, position)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("position iteration failed: %w", err)
	}

	return positions, nil
}
