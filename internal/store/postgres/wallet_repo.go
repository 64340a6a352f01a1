package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store"
)

type WalletRepo struct {
	db *DB
}

var _ store.WalletDirectory = (*WalletRepo)(nil)

func NewWalletRepo(db *DB) *WalletRepo {
	return &WalletRepo{db: db}
}

// Link records a wallet for a user. Re-linking the same address is a no-op
// that returns the stored wallet.
func (r *WalletRepo) Link(ctx context.Context, w model.Wallet) (*model.Wallet, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	var out model.Wallet
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO wallets (id, user_id, public_address, chain_family)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, public_address) DO UPDATE SET
			user_id = wallets.user_id
		RETURNING id, user_id, public_address, chain_family, linked_at
	`, w.ID, w.UserID, w.PublicAddress, w.Family).Scan(
		&out.ID, &out.UserID, &out.PublicAddress, &out.Family, &out.LinkedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("link wallet: %w", err)
	}
	return &out, nil
}

func (r *WalletRepo) ListWallets(ctx context.Context, userID uuid.UUID) ([]model.Wallet, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, public_address, chain_family, linked_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY linked_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []model.Wallet
	for rows.Next() {
		var w model.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.PublicAddress, &w.Family, &w.LinkedAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (r *WalletRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM wallets
		GROUP BY user_id
		ORDER BY MIN(linked_at), user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *WalletRepo) GetWallet(ctx context.Context, walletID uuid.UUID) (*model.Wallet, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var w model.Wallet
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, public_address, chain_family, linked_at
		FROM wallets
		WHERE id = $1
	`, walletID).Scan(&w.ID, &w.UserID, &w.PublicAddress, &w.Family, &w.LinkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wallet %s: %w", walletID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &w, nil
}
