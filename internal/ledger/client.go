/*

This file contains the HTTP client for the ledger query service: read-only
pool, account, and orderbook lookups. The client is bound to one network at
construction; callers never consult a process-wide default.

*/

package ledger

import (
	"context"
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
	"github.com/meridian-dex/lar/internal/types"
)

const queryTimeout = 20 * time.Second

var (
	ErrPoolNotFound    = errors.New("liquidity pool not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrQueryFailed     = errors.New("ledger query failed")
)

// QueryClient is a read-only client for the ledger query service.
type QueryClient struct {
	baseURL    string
	network    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewQueryClient builds a query client bound to the given endpoint and
// network ("testnet" or "mainnet").
func NewQueryClient(baseURL, network string) (*QueryClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("ledger query endpoint cannot be empty")
	}
	if network != "testnet" && network != "mainnet" {
		return nil, fmt.Errorf("unknown network %q (want testnet or mainnet)", network)
	}

	return &QueryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		network:    network,
		httpClient: &http.Client{Timeout: queryTimeout},
		logger:     logger.GetForComponent("ledger_query"),
	}, nil
}

// Network returns the network this client was bound to at construction.
func (c *QueryClient) Network() string {
	return c.network
}

// GetPool fetches the snapshot for one pool id. A missing pool is reported
// as ErrPoolNotFound, which discovery treats as absence, not failure.
func (c *QueryClient) GetPool(ctx context.Context, poolID string) (PoolSnapshot, error) {
	if strings.TrimSpace(poolID) == "" {
		return PoolSnapshot{}, fmt.Errorf("%w: pool id cannot be empty", ErrQueryFailed)
	}

	var snapshot PoolSnapshot
	endpoint := c.baseURL + "/liquidity_pools/" + url.PathEscape(poolID)
	if err := c.getJSON(ctx, endpoint, &snapshot, ErrPoolNotFound); err != nil {
		return PoolSnapshot{}, err
	}

	c.logger.Debug().
		Str("poolID", poolID).
		Int("reserveCount", len(snapshot.Reserves)).
		Str("totalShares", snapshot.TotalShares).
		Msg("Fetched pool snapshot")

	return snapshot, nil
}

// GetAccountBalances fetches the balance list for an account address.
func (c *QueryClient) GetAccountBalances(ctx context.Context, address string) ([]BalanceRecord, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: address cannot be empty", ErrQueryFailed)
	}

	var account struct {
		Balances []BalanceRecord `json:"balances"`
	}
	endpoint := c.baseURL + "/accounts/" + url.PathEscape(address)
	if err := c.getJSON(ctx, endpoint, &account, ErrAccountNotFound); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("address", address).
		Int("balanceCount", len(account.Balances)).
		Msg("Fetched account balances")

	return account.Balances, nil
}

// GetOrderbook fetches the current bid/ask view for an asset pair.
func (c *QueryClient) GetOrderbook(ctx context.Context, selling, buying types.Asset) (Orderbook, error) {
	params := url.Values{}
	params.Set("selling", selling.String())
	params.Set("buying", buying.String())

	var book Orderbook
	endpoint := c.baseURL + "/order_book?" + params.Encode()
	if err := c.getJSON(ctx, endpoint, &book, nil); err != nil {
		return Orderbook{}, err
	}

	c.logger.Debug().
		Str("selling", selling.String()).
		Str("buying", buying.String()).
		Int("bids", len(book.Bids)).
		Int("asks", len(book.Asks)).
		Msg("Fetched orderbook")

	return book, nil
}

// getJSON performs one GET request and decodes the JSON body into out.
// A 404 maps to notFoundErr when one is provided.
func (c *QueryClient) getJSON(ctx context.Context, endpoint string, out any, notFoundErr error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %w", ErrQueryFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && notFoundErr != nil {
		return notFoundErr
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: unexpected status %d: %s", ErrQueryFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrQueryFailed, err)
	}

	return nil
}
