package klaytn

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/gateway"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/klaytn/rpc"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/klaytn/rpc/mocks"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const wallet = "0x00000000000000000000000000000000000000bb"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func newTestAdapter(t *testing.T) (*Adapter, *mocks.MockRPCClient) {
	t.Helper()
	client := mocks.NewMockRPCClient(gomock.NewController(t))
	gw := gateway.New(model.ProviderKAS, testLogger(), gateway.WithRetryPolicy(retry.Policy{MaxAttempts: 1}))
	return NewAdapter(client, gw, Config{PageLimit: 50}, testLogger()), client
}

func klayWallet() model.Wallet {
	return model.Wallet{PublicAddress: wallet, Family: model.FamilyEVM}
}

func owned(contract, tokenID string) rpc.OwnedToken {
	return rpc.OwnedToken{Kind: "nft", ContractAddress: contract, Extras: rpc.TokenExtras{TokenID: tokenID}}
}

func TestAdapter_GroupsPerContract(t *testing.T) {
	adapter, client := newTestAdapter(t)

	client.EXPECT().GetOwnedNFTs(gomock.Any(), wallet, "", 50).
		Return(&rpc.TokensPage{Cursor: "next", Items: []rpc.OwnedToken{
			owned("0xAA", "0x1"),
			owned("0xbb", "0xff"),
			owned("0xaa", "0x02"),
		}}, nil)
	client.EXPECT().GetNFTContract(gomock.Any(), "0xaa").Return(&rpc.Contract{Name: "Alpha", Symbol: "A"}, nil)
	client.EXPECT().GetNFTContract(gomock.Any(), "0xbb").Return(&rpc.Contract{Name: "Beta", Symbol: "B"}, nil)

	page, err := adapter.FetchPage(context.Background(), chain.PageRequest{Wallet: klayWallet(), Chain: model.ChainKlaytn})
	require.NoError(t, err)

	assert.Equal(t, "next", page.NextPageToken)
	assert.Equal(t, 2, page.PageSize)
	require.Len(t, page.Collections, 2)

	alpha := page.Collections[0]
	assert.Equal(t, "0xaa", alpha.TokenAddress)
	assert.Equal(t, "Alpha", alpha.Name)
	assert.Equal(t, "KLAY", alpha.ChainSymbol)
	require.Len(t, alpha.Tokens, 2)
	assert.Equal(t, "1", alpha.Tokens[0].TokenID)
	assert.Equal(t, "2", alpha.Tokens[1].TokenID)
	assert.Equal(t, model.TokenKey(model.ChainKlaytn, "0xaa", "1"), alpha.Tokens[0].ID)
	assert.Empty(t, alpha.Tokens[0].ImageURL)

	assert.Equal(t, "255", page.Collections[1].Tokens[0].TokenID)
}

func TestAdapter_ContractMetadataCachedAndWindowed(t *testing.T) {
	adapter, client := newTestAdapter(t)

	client.EXPECT().GetOwnedNFTs(gomock.Any(), wallet, "c1", 50).
		Return(&rpc.TokensPage{Items: []rpc.OwnedToken{owned("0xaa", "1"), owned("0xbb", "2")}}, nil).
		Times(2)
	// Only the windowed collection is enriched, and only once.
	client.EXPECT().GetNFTContract(gomock.Any(), "0xbb").Return(&rpc.Contract{Name: "Beta"}, nil).Times(1)

	for i := 0; i < 2; i++ {
		page, err := adapter.FetchPage(context.Background(), chain.PageRequest{
			Wallet:    klayWallet(),
			Chain:     model.ChainKlaytn,
			PageToken: "c1",
			Offset:    1,
			Limit:     5,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, page.PageSize)
		assert.False(t, page.HasMore())
		require.Len(t, page.Collections, 1)
		assert.Equal(t, "Beta", page.Collections[0].Name)
	}
}

func TestAdapter_ContractLookupFailureLeavesCollectionUnnamed(t *testing.T) {
	adapter, client := newTestAdapter(t)

	client.EXPECT().GetOwnedNFTs(gomock.Any(), wallet, "", 50).
		Return(&rpc.TokensPage{Items: []rpc.OwnedToken{owned("0xaa", "1")}}, nil)
	client.EXPECT().GetNFTContract(gomock.Any(), "0xaa").Return(nil, errors.New("not found"))

	page, err := adapter.FetchPage(context.Background(), chain.PageRequest{Wallet: klayWallet(), Chain: model.ChainKlaytn})
	require.NoError(t, err)
	require.Len(t, page.Collections, 1)
	assert.Empty(t, page.Collections[0].Name)
	assert.Equal(t, "1", page.Collections[0].Tokens[0].TokenID)
}

func TestAdapter_RejectsOtherChains(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	_, err := adapter.FetchPage(context.Background(), chain.PageRequest{Wallet: klayWallet(), Chain: model.ChainPolygon})
	require.ErrorIs(t, err, chain.ErrNotImplemented)
}

func TestDecimalTokenID(t *testing.T) {
	assert.Equal(t, "16", decimalTokenID("0x10"))
	assert.Equal(t, "42", decimalTokenID("42"))
	assert.Equal(t, "0xzz", decimalTokenID("0xzz"))
}
