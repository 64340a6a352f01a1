// Package memory is an in-process storage backend for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store"
)

type Store struct {
	mu          sync.RWMutex
	wallets     []model.Wallet
	collections map[model.CollectionKey]model.Collection
	tokens      map[string]model.Token
	now         func() time.Time
}

var (
	_ store.WalletDirectory = (*Store)(nil)
	_ store.WalletLinker    = (*Store)(nil)
	_ store.HoldingsStore   = (*Store)(nil)
)

func New() *Store {
	return &Store{
		collections: make(map[model.CollectionKey]model.Collection),
		tokens:      make(map[string]model.Token),
		now:         time.Now,
	}
}

// AddWallet links a wallet to its user. A zero ID or LinkedAt is filled in.
func (s *Store) AddWallet(w model.Wallet) model.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.LinkedAt.IsZero() {
		w.LinkedAt = s.now()
	}
	s.wallets = append(s.wallets, w)
	return w
}

// Link is AddWallet with re-link detection on (user, address).
func (s *Store) Link(_ context.Context, w model.Wallet) (*model.Wallet, error) {
	s.mu.RLock()
	for _, existing := range s.wallets {
		if existing.UserID == w.UserID && existing.PublicAddress == w.PublicAddress {
			s.mu.RUnlock()
			return &existing, nil
		}
	}
	s.mu.RUnlock()
	linked := s.AddWallet(w)
	return &linked, nil
}

func (s *Store) ListWallets(_ context.Context, userID uuid.UUID) ([]model.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Wallet
	for _, w := range s.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LinkedAt.Equal(out[j].LinkedAt) {
			return out[i].LinkedAt.Before(out[j].LinkedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) ListUserIDs(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, w := range s.wallets {
		if !seen[w.UserID] {
			seen[w.UserID] = true
			out = append(out, w.UserID)
		}
	}
	return out, nil
}

func (s *Store) GetWallet(_ context.Context, walletID uuid.UUID) (*model.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.wallets {
		if w.ID == walletID {
			w := w
			return &w, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindCollections(_ context.Context, chain model.Chain, addresses []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool)
	for _, addr := range addresses {
		if _, ok := s.collections[model.CollectionKey{Chain: chain, TokenAddress: addr}]; ok {
			out[addr] = true
		}
	}
	return out, nil
}

func (s *Store) CreateCollections(_ context.Context, collections []model.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, c := range collections {
		if _, ok := s.collections[c.Key()]; ok {
			continue
		}
		c.CreatedAt, c.UpdatedAt = now, now
		s.collections[c.Key()] = c
	}
	return nil
}

func (s *Store) ListTokenIDsByOwner(_ context.Context, chain model.Chain, owner string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for id, t := range s.tokens {
		if t.Chain == chain && t.OwnerWalletAddress == owner {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) CreateTokens(_ context.Context, tokens []model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tokens {
		if _, ok := s.collections[model.CollectionKey{Chain: t.Chain, TokenAddress: t.CollectionAddress}]; !ok {
			return fmt.Errorf("create token %s: collection %s: %w", t.ID, t.CollectionAddress, store.ErrNotFound)
		}
	}
	for _, t := range tokens {
		s.tokens[t.ID] = t
	}
	return nil
}

func (s *Store) TouchTokens(_ context.Context, ids []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if t, ok := s.tokens[id]; ok {
			t.LastObservedAt = at
			s.tokens[id] = t
		}
	}
	return nil
}

func (s *Store) DeleteTokens(_ context.Context, owner string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if t, ok := s.tokens[id]; ok && t.OwnerWalletAddress == owner {
			delete(s.tokens, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) ListHoldingsByOwners(_ context.Context, owners []string, offset, limit int) ([]model.NormalizedCollection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	position := make(map[string]int, len(owners))
	for i, o := range owners {
		if _, ok := position[o]; !ok {
			position[o] = i
		}
	}

	var tokens []model.Token
	for _, t := range s.tokens {
		if _, ok := position[t.OwnerWalletAddress]; ok {
			tokens = append(tokens, t)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		if pa, pb := position[a.OwnerWalletAddress], position[b.OwnerWalletAddress]; pa != pb {
			return pa < pb
		}
		if a.Chain != b.Chain {
			return a.Chain < b.Chain
		}
		if a.CollectionAddress != b.CollectionAddress {
			return a.CollectionAddress < b.CollectionAddress
		}
		return a.ID < b.ID
	})

	var (
		out       []model.NormalizedCollection
		lastOwner string
	)
	for _, t := range tokens {
		key := model.CollectionKey{Chain: t.Chain, TokenAddress: t.CollectionAddress}
		if n := len(out); n == 0 || lastOwner != t.OwnerWalletAddress || out[n-1].Key() != key {
			c := s.collections[key]
			out = append(out, model.NormalizedCollection{
				ChainSymbol:    t.Chain.Symbol(),
				Chain:          t.Chain,
				TokenAddress:   t.CollectionAddress,
				Name:           c.Name,
				Symbol:         c.Symbol,
				CollectionLogo: c.LogoURL,
			})
			lastOwner = t.OwnerWalletAddress
		}
		last := &out[len(out)-1]
		last.Tokens = append(last.Tokens, model.NormalizedToken{
			ID:                 t.ID,
			TokenID:            t.TokenID,
			Name:               t.Name,
			ImageURL:           t.ImageURL,
			OwnerWalletAddress: t.OwnerWalletAddress,
		})
	}

	if offset >= len(out) {
		return nil, nil
	}
	out = out[max(offset, 0):]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
