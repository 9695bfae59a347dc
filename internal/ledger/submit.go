/*

This file contains the transaction submission client used only by the
bootstrap execution path. Signing is an injected capability; the client
never holds key material itself.

*/

package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridian-dex/lar/internal/logger"
)

const submitTimeout = 30 * time.Second

var (
	ErrNoOperations  = errors.New("no operations provided")
	ErrSigningFailed = errors.New("transaction signing failed")
	ErrSubmitFailed  = errors.New("transaction submission failed")
)

// Signer signs a serialized transaction. Implementations are injected by the
// caller; key custody is outside this module.
type Signer interface {
	Sign(tx []byte) ([]byte, error)
}

// Operation is a single ledger operation in a transaction envelope.
type Operation struct {
	Type       string `json:"type"`
	PoolID     string `json:"pool_id,omitempty"`
	MaxAmountA string `json:"max_amount_a,omitempty"`
	MaxAmountB string `json:"max_amount_b,omitempty"`
	MinPrice   string `json:"min_price,omitempty"`
	MaxPrice   string `json:"max_price,omitempty"`
}

// SubmitResult carries the hash of an accepted transaction.
type SubmitResult struct {
	Hash string `json:"hash"`
}

// TxClient builds, signs, and posts transactions to the ledger submission
// service.
type TxClient struct {
	baseURL    string
	network    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewTxClient builds a submission client bound to the given endpoint and
// network.
func NewTxClient(baseURL, network string) (*TxClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("ledger submit endpoint cannot be empty")
	}
	if network != "testnet" && network != "mainnet" {
		return nil, fmt.Errorf("unknown network %q (want testnet or mainnet)", network)
	}

	return &TxClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		network:    network,
		httpClient: &http.Client{Timeout: submitTimeout},
		logger:     logger.GetForComponent("ledger_submit"),
	}, nil
}

// BuildAndSubmit serializes the operations into an envelope, has the signer
// sign it, and posts the signed transaction. Returns the transaction hash on
// acceptance.
func (c *TxClient) BuildAndSubmit(ctx context.Context, operations []Operation, signer Signer) (SubmitResult, error) {
	if len(operations) == 0 {
		return SubmitResult{}, ErrNoOperations
	}
	if signer == nil {
		return SubmitResult{}, fmt.Errorf("%w: no signer provided", ErrSigningFailed)
	}

	envelope := struct {
		Network    string      `json:"network"`
		Operations []Operation `json:"operations"`
	}{
		Network:    c.network,
		Operations: operations,
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: failed to marshal envelope: %w", ErrSubmitFailed, err)
	}

	signed, err := signer.Sign(raw)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	c.logger.Info().
		Int("operationCount", len(operations)).
		Str("network", c.network).
		Msg("Submitting signed transaction")

	form := url.Values{}
	form.Set("tx", base64.StdEncoding.EncodeToString(signed))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", strings.NewReader(form.Encode()))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: failed to build request: %w", ErrSubmitFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return SubmitResult{}, fmt.Errorf("%w: unexpected status %d: %s", ErrSubmitFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: failed to decode response: %w", ErrSubmitFailed, err)
	}

	c.logger.Info().Str("txHash", result.Hash).Msg("Transaction accepted")
	return result, nil
}
