package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// Wallet is an address linked to a user. Slices of wallets are kept in
// linkage order; that order drives pagination.
type Wallet struct {
	ID            uuid.UUID   `db:"id"`
	UserID        uuid.UUID   `db:"user_id"`
	PublicAddress string      `db:"public_address"`
	Family        ChainFamily `db:"chain_family"`
	LinkedAt      time.Time   `db:"linked_at"`
}

// SupportsChain reports whether holdings on c can belong to this wallet.
func (w Wallet) SupportsChain(c Chain) bool {
	return c.Family() == w.Family
}

// NormalizeAddress validates an address for its family and returns the
// canonical form used as the owner key in storage. EVM addresses are
// lower-cased hex; Solana addresses are base58 public keys and keep their case.
func NormalizeAddress(family ChainFamily, address string) (string, error) {
	address = strings.TrimSpace(address)
	switch family {
	case FamilyEVM:
		if !common.IsHexAddress(address) {
			return "", fmt.Errorf("invalid evm address %q", address)
		}
		return strings.ToLower(common.HexToAddress(address).Hex()), nil
	case FamilySolana:
		decoded, err := base58.Decode(address)
		if err != nil {
			return "", fmt.Errorf("invalid solana address %q: %w", address, err)
		}
		if len(decoded) != 32 {
			return "", fmt.Errorf("invalid solana address %q: decoded length %d", address, len(decoded))
		}
		return address, nil
	default:
		return "", fmt.Errorf("unsupported chain family %q", family)
	}
}

// Addresses returns the public addresses of wallets in order.
func Addresses(wallets []Wallet) []string {
	out := make([]string, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, w.PublicAddress)
	}
	return out
}
