package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSigner struct {
	err    error
	signed [][]byte
}

func (s *stubSigner) Sign(tx []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.signed = append(s.signed, tx)
	return append([]byte("signed:"), tx...), nil
}

func TestBuildAndSubmit(t *testing.T) {
	var receivedTx string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		receivedTx = r.PostFormValue("tx")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hash": "deadbeef"}`))
	}))
	defer server.Close()

	client, err := NewTxClient(server.URL, "testnet")
	require.NoError(t, err)

	signer := &stubSigner{}
	result, err := client.BuildAndSubmit(context.Background(), []Operation{{
		Type:       "liquidity_pool_deposit",
		PoolID:     "abc123",
		MaxAmountA: "100.0000000",
		MaxAmountB: "200.0000000",
		MinPrice:   "1.9000000",
		MaxPrice:   "2.1000000",
	}}, signer)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", result.Hash)

	// The signer saw the envelope, and the server got its signed form.
	require.Len(t, signer.signed, 1)
	var envelope struct {
		Network    string      `json:"network"`
		Operations []Operation `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(signer.signed[0], &envelope))
	assert.Equal(t, "testnet", envelope.Network)
	require.Len(t, envelope.Operations, 1)
	assert.Equal(t, "abc123", envelope.Operations[0].PoolID)

	decoded, err := base64.StdEncoding.DecodeString(receivedTx)
	require.NoError(t, err)
	assert.Equal(t, append([]byte("signed:"), signer.signed[0]...), decoded)
}

func TestBuildAndSubmitGuards(t *testing.T) {
	client, err := NewTxClient("http://localhost:1", "testnet")
	require.NoError(t, err)

	_, err = client.BuildAndSubmit(context.Background(), nil, &stubSigner{})
	assert.ErrorIs(t, err, ErrNoOperations)

	_, err = client.BuildAndSubmit(context.Background(), []Operation{{Type: "noop"}}, nil)
	assert.ErrorIs(t, err, ErrSigningFailed)

	_, err = client.BuildAndSubmit(context.Background(), []Operation{{Type: "noop"}}, &stubSigner{err: errors.New("hsm offline")})
	assert.ErrorIs(t, err, ErrSigningFailed)
}

func TestBuildAndSubmitRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tx malformed", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewTxClient(server.URL, "testnet")
	require.NoError(t, err)

	_, err = client.BuildAndSubmit(context.Background(), []Operation{{Type: "noop"}}, &stubSigner{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Contains(t, err.Error(), "tx malformed")
}
