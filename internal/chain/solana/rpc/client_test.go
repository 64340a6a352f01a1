package rpc

import (
	"context"
	"encoding/json"
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

func TestGetAssetsByOwner(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "das-key", r.URL.Query().Get("api-key"))

		var req struct {
			Method string         `json:"method"`
			Params map[string]any `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getAssetsByOwner", req.Method)
		assert.Equal(t, "Owner111", req.Params["ownerAddress"])
		assert.EqualValues(t, 2, req.Params["page"])
		assert.EqualValues(t, 50, req.Params["limit"])

		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{
			"total": 1, "limit": 50, "page": 2,
			"items": [{
				"id": "Mint111",
				"content": {"metadata": {"name": "Degen #1"}, "links": {"image": "https://img/1"}},
				"grouping": [{"group_key": "collection", "group_value": "Col111",
					"collection_metadata": {"name": "Degens", "symbol": "DGN", "image": "https://col"}}],
				"ownership": {"owner": "Owner111"}
			}]
		}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "das-key", 5*time.Second, slog.Default())
	page, err := client.GetAssetsByOwner(context.Background(), "Owner111", 2, 50)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	asset := page.Items[0]
	g, ok := asset.CollectionOf()
	require.True(t, ok)
	assert.Equal(t, "Col111", g.GroupValue)
	require.NotNil(t, g.CollectionMetadata)
	assert.Equal(t, "Degens", g.CollectionMetadata.Name)
	assert.Equal(t, "https://img/1", asset.ImageURL())
}

func TestGetAssetsByOwner_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid owner"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second, slog.Default())
	_, err := client.GetAssetsByOwner(context.Background(), "bad", 1, 10)

	var rpcErr *httpclient.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32602, rpcErr.Code)
}

func TestGroupingLookup_GetToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/tokens/Mint222", r.URL.Path)
		_, _ = w.Write([]byte(`{"mint":"Mint222","name":"Thing","collection":{"address":"Col222","name":"Things"}}`))
	}))
	defer server.Close()

	lookup := NewGroupingLookup(server.URL, 5*time.Second, slog.Default())
	info, err := lookup.GetToken(context.Background(), "Mint222")
	require.NoError(t, err)
	require.NotNil(t, info.Collection)
	assert.Equal(t, "Col222", info.Collection.Address)
}

func TestAsset_ImageFallsBackToFiles(t *testing.T) {
	a := Asset{Content: AssetContent{Files: []AssetFile{{URI: ""}, {URI: "https://file"}}}}
	assert.Equal(t, "https://file", a.ImageURL())

	_, ok := Asset{Grouping: []Grouping{{GroupKey: "creator", GroupValue: "x"}}}.CollectionOf()
	assert.False(t, ok)
}
