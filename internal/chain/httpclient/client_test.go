package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestClient_GetJSON_HeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/wallet/0xabc/nft", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		assert.Equal(t, "eth", r.URL.Query().Get("chain"))
		assert.Equal(t, "fixed", r.URL.Query().Get("api-key"))
		_, _ = w.Write([]byte(`{"cursor":"next","page_size":2}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", testLogger(),
		WithHeader("X-API-Key", "secret"),
		WithQueryParam("api-key", "fixed"),
	)

	var out struct {
		Cursor   string `json:"cursor"`
		PageSize int    `json:"page_size"`
	}
	err := c.GetJSON(context.Background(), "/v2/wallet/0xabc/nft", url.Values{"chain": {"eth"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "next", out.Cursor)
	assert.Equal(t, 2, out.PageSize)
}

func TestClient_BasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "access", user)
		assert.Equal(t, "secret", pass)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger(), WithBasicAuth("access", "secret"))
	require.NoError(t, c.GetJSON(context.Background(), "/ping", nil, nil))
}

func TestClient_NonSuccessStatusReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	err := c.GetJSON(context.Background(), "/x", nil, &struct{}{})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, "slow down", httpErr.Body)
	assert.Contains(t, err.Error(), "http status 429")
}

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		var in map[string]string
		require.NoError(t, json.Unmarshal(body, &in))
		_, _ = w.Write([]byte(`{"echo":"` + in["msg"] + `"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	var out map[string]string
	require.NoError(t, c.PostJSON(context.Background(), "/echo", map[string]string{"msg": "hi"}, &out))
	assert.Equal(t, "hi", out["echo"])
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := New(srv.URL, testLogger())
	err := c.GetJSON(context.Background(), "/x", nil, &struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal response")
}

func TestJSONRPC_Call(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		switch req.Method {
		case "getAssetsByOwner":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"total":3}}`))
		default:
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`))
		}
	}))
	defer srv.Close()

	rpc := NewJSONRPC(New(srv.URL, testLogger()))

	var out struct {
		Total int `json:"total"`
	}
	require.NoError(t, rpc.Call(context.Background(), "getAssetsByOwner", map[string]any{}, &out))
	assert.Equal(t, 3, out.Total)

	err := rpc.Call(context.Background(), "nope", nil, nil)
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32601, rpcErr.Code)
}
