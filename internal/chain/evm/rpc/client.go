package rpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/httpclient"
)

// DefaultBaseURL is the Moralis EVM API root.
const DefaultBaseURL = "https://deep-index.moralis.io/api/v2.2"

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// RPCClient abstracts the Moralis EVM API for testing.
type RPCClient interface {
	GetWalletNFTCollections(ctx context.Context, address, chainID, cursor string, limit int) (*CollectionsPage, error)
	GetWalletNFTs(ctx context.Context, address, chainID string, tokenAddresses []string, cursor string, limit int) (*NFTsPage, error)
	EndpointWeights(ctx context.Context) (map[string]int, error)
}

type Client struct {
	http   *httpclient.Client
	logger *slog.Logger
}

var _ RPCClient = (*Client)(nil)

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http: httpclient.New(baseURL, logger,
			httpclient.WithHeader("X-API-Key", apiKey),
			httpclient.WithTimeout(timeout),
		),
		logger: logger,
	}
}
