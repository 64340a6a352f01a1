package model

import (
	"strings"
	"time"
)

// Collection is a token contract (or Solana collection) that at least one
// linked wallet has been observed holding.
type Collection struct {
	Chain        Chain     `db:"chain"`
	TokenAddress string    `db:"token_address"`
	Name         string    `db:"name"`
	Symbol       string    `db:"symbol"`
	LogoURL      string    `db:"logo_url"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Key returns the identity of the collection.
func (c Collection) Key() CollectionKey {
	return CollectionKey{Chain: c.Chain, TokenAddress: c.TokenAddress}
}

// CollectionKey identifies a collection; token addresses are unique per chain.
type CollectionKey struct {
	Chain        Chain
	TokenAddress string
}

// Token is a single owned item within a collection.
type Token struct {
	ID                 string    `db:"id"`
	Chain              Chain     `db:"chain"`
	CollectionAddress  string    `db:"collection_address"`
	TokenID            string    `db:"token_id"`
	Name               string    `db:"name"`
	ImageURL           string    `db:"image_url"`
	OwnerWalletAddress string    `db:"owner_wallet_address"`
	LastObservedAt     time.Time `db:"last_observed_at"`
}

// TokenKey builds the content-addressed id of a token. The same item fetched
// twice always yields the same id, which makes reconciliation idempotent.
// EVM contract addresses are case-insensitive and are lower-cased; Solana
// addresses are case-sensitive and kept verbatim.
func TokenKey(chain Chain, collectionAddress, tokenID string) string {
	if chain.Family() == FamilyEVM {
		collectionAddress = strings.ToLower(collectionAddress)
	}
	return string(chain) + ":" + collectionAddress + ":" + tokenID
}

// NormalizedToken is the provider-independent shape of an owned item.
type NormalizedToken struct {
	ID                 string `json:"id"`
	TokenID            string `json:"tokenId"`
	Name               string `json:"name"`
	ImageURL           string `json:"imageUrl"`
	OwnerWalletAddress string `json:"ownerWalletAddress"`
}

// NormalizedCollection is the provider-independent shape every adapter emits.
type NormalizedCollection struct {
	ChainSymbol    string            `json:"chainSymbol"`
	Chain          Chain             `json:"chain"`
	TokenAddress   string            `json:"tokenAddress"`
	Name           string            `json:"name"`
	Symbol         string            `json:"symbol"`
	CollectionLogo string            `json:"collectionLogo"`
	Tokens         []NormalizedToken `json:"tokens"`
}

// Key returns the identity of the collection.
func (c NormalizedCollection) Key() CollectionKey {
	return CollectionKey{Chain: c.Chain, TokenAddress: c.TokenAddress}
}

// ToCollection converts the normalized shape into a storage row.
func (c NormalizedCollection) ToCollection() Collection {
	return Collection{
		Chain:        c.Chain,
		TokenAddress: c.TokenAddress,
		Name:         c.Name,
		Symbol:       c.Symbol,
		LogoURL:      c.CollectionLogo,
	}
}

// ToTokens converts the collection's tokens into storage rows observed at.
func (c NormalizedCollection) ToTokens(observedAt time.Time) []Token {
	out := make([]Token, 0, len(c.Tokens))
	for _, t := range c.Tokens {
		out = append(out, Token{
			ID:                 t.ID,
			Chain:              c.Chain,
			CollectionAddress:  c.TokenAddress,
			TokenID:            t.TokenID,
			Name:               t.Name,
			ImageURL:           t.ImageURL,
			OwnerWalletAddress: t.OwnerWalletAddress,
			LastObservedAt:     observedAt,
		})
	}
	return out
}
