package chain

import (
	"context"
	"errors"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
)

// ErrNotImplemented is returned for a chain no provider adapter serves.
// It is a hard failure and is never retried.
var ErrNotImplemented = errors.New("chain: not implemented")

// HoldingsAdapter abstracts one provider's holdings API so the pipeline core
// operates provider-agnostically.
type HoldingsAdapter interface {
	// Provider returns the provider this adapter talks to.
	Provider() model.Provider

	// FetchPage fetches one provider-native page of a wallet's holdings on a
	// chain and normalizes it.
	FetchPage(ctx context.Context, req PageRequest) (*Page, error)
}

// PageRequest addresses one provider page.
type PageRequest struct {
	Wallet model.Wallet
	Chain  model.Chain
	// PageToken is the provider-native page token; empty means first page.
	PageToken string
	// Offset skips that many collections of the provider page.
	Offset int
	// Limit caps the collections returned; 0 means no cap. Two-phase
	// providers only populate tokens for the collections returned.
	Limit int
}

// Page is one normalized provider page.
type Page struct {
	// Collections is the windowed slice of the provider page.
	Collections []model.NormalizedCollection
	// PageSize is the number of collections on the whole provider page,
	// before Offset and Limit were applied.
	PageSize int
	// NextPageToken is empty when the provider has no further pages.
	NextPageToken string
	// Truncated is set when a collection on the page was cut short, so the
	// page does not list every token the wallet owns.
	Truncated bool
}

// HasMore reports whether the provider signalled another page.
func (p *Page) HasMore() bool {
	return p.NextPageToken != ""
}

// Window returns the [offset, offset+limit) slice of items, clamped to
// bounds. A limit of 0 means no cap.
func Window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
