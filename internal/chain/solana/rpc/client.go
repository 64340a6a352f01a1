package rpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/httpclient"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// RPCClient abstracts the DAS (Digital Asset Standard) JSON-RPC API for testing.
type RPCClient interface {
	GetAssetsByOwner(ctx context.Context, owner string, page, limit int) (*AssetsPage, error)
}

// GroupingClient abstracts the token-to-collection lookup API for testing.
type GroupingClient interface {
	GetToken(ctx context.Context, mint string) (*TokenInfo, error)
}

// Client talks to a DAS-compatible JSON-RPC endpoint.
type Client struct {
	rpc    *httpclient.JSONRPC
	logger *slog.Logger
}

var _ RPCClient = (*Client)(nil)

// NewClient creates a DAS client. The API key is sent as the api-key query
// parameter.
func NewClient(rpcURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	opts := []httpclient.Option{httpclient.WithTimeout(timeout)}
	if apiKey != "" {
		opts = append(opts, httpclient.WithQueryParam("api-key", apiKey))
	}
	return &Client{
		rpc:    httpclient.NewJSONRPC(httpclient.New(rpcURL, logger, opts...)),
		logger: logger,
	}
}

// GroupingLookup resolves a mint to its collection over REST.
type GroupingLookup struct {
	http *httpclient.Client
}

var _ GroupingClient = (*GroupingLookup)(nil)

func NewGroupingLookup(baseURL string, timeout time.Duration, logger *slog.Logger) *GroupingLookup {
	return &GroupingLookup{
		http: httpclient.New(baseURL, logger, httpclient.WithTimeout(timeout)),
	}
}
