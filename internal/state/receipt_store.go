// ./internal/state/receipt_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq" // PostgreSQL driver for array support
	"github.com/rs/zerolog/log"

	"github.com/meridian-dex/lar/internal/types"
)

// BootstrapReceipt is one persisted bootstrap outcome, planned or executed.
type BootstrapReceipt struct {
	ReceiptID          int64     `json:"receipt_id"`
	PlanID             string    `json:"plan_id"`
	Success            bool      `json:"success"`
	TargetLiquidityUSD float64   `json:"target_liquidity_usd"`
	AmountA            float64   `json:"amount_a"`
	AmountB            float64   `json:"amount_b"`
	SourcesUsed        []string  `json:"sources_used"`
	Message            string    `json:"message"`
	TxHash             string    `json:"tx_hash,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// SaveBootstrapReceipt records a bootstrap plan outcome. txHash is empty for
// plan-only runs.
func SaveBootstrapReceipt(plan types.BootstrapPlan, targetLiquidityUSD float64, txHash string) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO bootstrap_receipts (
			plan_id, success, target_liquidity_usd, amount_a, amount_b,
			sources_used, message, tx_hash, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), CURRENT_TIMESTAMP)
		RETURNING receipt_id;
	`

	var receiptID int64
	err := DB.QueryRow(
		query,
		plan.PlanID, plan.Success, targetLiquidityUSD, plan.AmountA, plan.AmountB,
		pq.Array(plan.SourcesUsed), plan.Message, txHash,
	).Scan(&receiptID)
	if err != nil {
		return 0, fmt.Errorf("failed to save bootstrap receipt: %w", err)
	}

	log.Info().
		Int64("receipt_id", receiptID).
		Str("plan_id", plan.PlanID).
		Bool("success", plan.Success).
		Msg("Bootstrap receipt saved to database")

	return receiptID, nil
}

// GetRecentBootstrapReceipts returns the most recent bootstrap receipts.
func GetRecentBootstrapReceipts(limit int) ([]BootstrapReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT receipt_id, plan_id, success, target_liquidity_usd, amount_a, amount_b,
		       sources_used, message, COALESCE(tx_hash, ''), created_at
		FROM bootstrap_receipts
		ORDER BY created_at DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bootstrap receipts: %w", err)
	}
	defer rows.Close()

	var receipts []BootstrapReceipt
	for rows.Next() {
		var receipt BootstrapReceipt
		var message sql.NullString
		if err := rows.Scan(
			&receipt.ReceiptID, &receipt.PlanID, &receipt.Success, &receipt.TargetLiquidityUSD,
			&receipt.AmountA, &receipt.AmountB, pq.Array(&receipt.SourcesUsed),
			&message, &receipt.TxHash, &receipt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bootstrap receipt: %w", err)
		}
		receipt.Message = message.String
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bootstrap receipt iteration failed: %w", err)
	}

	return receipts, nil
}
