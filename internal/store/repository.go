package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("store: not found")

// WalletDirectory provides read access to users and their linked wallets.
type WalletDirectory interface {
	// ListWallets returns a user's wallets in linkage order.
	ListWallets(ctx context.Context, userID uuid.UUID) ([]model.Wallet, error)
	// ListUserIDs returns every user that has at least one wallet.
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*model.Wallet, error)
}

// WalletLinker links a wallet to a user. Linking an address the user
// already has returns the existing wallet.
type WalletLinker interface {
	Link(ctx context.Context, w model.Wallet) (*model.Wallet, error)
}

// HoldingsStore persists collections and the tokens wallets hold in them.
type HoldingsStore interface {
	// FindCollections returns the subset of addresses that already exist on chain.
	FindCollections(ctx context.Context, chain model.Chain, addresses []string) (map[string]bool, error)
	// CreateCollections inserts collections, ignoring ones that already exist.
	CreateCollections(ctx context.Context, collections []model.Collection) error
	// ListTokenIDsByOwner returns the ids of the tokens stored for owner on chain.
	ListTokenIDsByOwner(ctx context.Context, chain model.Chain, owner string) ([]string, error)
	// CreateTokens inserts tokens. An id that already exists under another
	// owner moves to the new owner.
	CreateTokens(ctx context.Context, tokens []model.Token) error
	// TouchTokens refreshes the last-observed time of ids.
	TouchTokens(ctx context.Context, ids []string, at time.Time) error
	// DeleteTokens deletes ids, restricted to tokens owned by owner.
	DeleteTokens(ctx context.Context, owner string, ids []string) (int, error)
	// ListHoldingsByOwners returns the stored holdings of owners grouped per
	// owner and collection. Groups follow the order of owners, then chain and
	// collection address; tokens are ordered by id. offset and limit window
	// the groups; a limit of 0 means no cap.
	ListHoldingsByOwners(ctx context.Context, owners []string, offset, limit int) ([]model.NormalizedCollection, error)
}
