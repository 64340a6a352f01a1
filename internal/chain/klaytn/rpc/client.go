package rpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/httpclient"
)

const (
	DefaultBaseURL = "https://th-api.klaytnapi.com"
	// MainnetChainID is sent as x-chain-id on every request.
	MainnetChainID = "8217"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// RPCClient abstracts the KAS token-history API for testing.
type RPCClient interface {
	GetOwnedNFTs(ctx context.Context, address, cursor string, size int) (*TokensPage, error)
	GetNFTContract(ctx context.Context, address string) (*Contract, error)
}

type Client struct {
	http   *httpclient.Client
	logger *slog.Logger
}

var _ RPCClient = (*Client)(nil)

// NewClient creates a KAS client authenticated with an access key pair.
func NewClient(baseURL, accessKeyID, secretAccessKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http: httpclient.New(baseURL, logger,
			httpclient.WithBasicAuth(accessKeyID, secretAccessKey),
			httpclient.WithHeader("x-chain-id", MainnetChainID),
			httpclient.WithTimeout(timeout),
		),
		logger: logger,
	}
}
