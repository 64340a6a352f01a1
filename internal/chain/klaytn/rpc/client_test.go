package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOwnedNFTs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account/0xabc/token", r.URL.Path)
		assert.Equal(t, "nft", r.URL.Query().Get("kind"))
		assert.Equal(t, "20", r.URL.Query().Get("size"))
		assert.Equal(t, "cur1", r.URL.Query().Get("cursor"))
		assert.Equal(t, MainnetChainID, r.Header.Get("x-chain-id"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)

		_, _ = w.Write([]byte(`{
			"items": [{"kind": "nft", "contractAddress": "0xc1", "updatedAt": 1700000000,
				"extras": {"tokenId": "0x1", "tokenUri": "https://meta/1"}}],
			"cursor": "cur2"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", 5*time.Second, slog.Default())
	page, err := client.GetOwnedNFTs(context.Background(), "0xabc", "cur1", 20)
	require.NoError(t, err)

	assert.Equal(t, "cur2", page.Cursor)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "0xc1", page.Items[0].ContractAddress)
	assert.Equal(t, "0x1", page.Items[0].Extras.TokenID)
}

func TestGetNFTContract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/contract/nft/0xc1", r.URL.Path)
		_, _ = w.Write([]byte(`{"address": "0xc1", "name": "Kitties", "symbol": "KIT", "status": "completed"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", 5*time.Second, slog.Default())
	contract, err := client.GetNFTContract(context.Background(), "0xc1")
	require.NoError(t, err)
	assert.Equal(t, "Kitties", contract.Name)
	assert.Equal(t, "KIT", contract.Symbol)
}

func TestGetOwnedNFTs_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", 5*time.Second, slog.Default())
	_, err := client.GetOwnedNFTs(context.Background(), "0xabc", "", 0)
	require.Error(t, err)

	var httpErr *httpclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}
