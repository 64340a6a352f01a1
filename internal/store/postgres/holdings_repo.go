package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store"
)

// maxRowsPerInsert keeps multi-VALUES statements under the bind parameter limit.
const maxRowsPerInsert = 1000

type HoldingsRepo struct {
	db *DB
}

var _ store.HoldingsStore = (*HoldingsRepo)(nil)

func NewHoldingsRepo(db *DB) *HoldingsRepo {
	return &HoldingsRepo{db: db}
}

func (r *HoldingsRepo) FindCollections(ctx context.Context, chain model.Chain, addresses []string) (map[string]bool, error) {
	result := make(map[string]bool, len(addresses))
	if len(addresses) == 0 {
		return result, nil
	}

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT token_address FROM collections
		WHERE chain = $1 AND token_address = ANY($2)
	`, chain, pq.Array(addresses))
	if err != nil {
		return nil, fmt.Errorf("find collections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("find collections scan: %w", err)
		}
		result[addr] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find collections rows: %w", err)
	}
	return result, nil
}

// CreateCollections inserts collections in multi-VALUES batches.
func (r *HoldingsRepo) CreateCollections(ctx context.Context, collections []model.Collection) error {
	ctx, cancel := withTimeout(ctx, LongQueryTimeout)
	defer cancel()

	for start := 0; start < len(collections); start += maxRowsPerInsert {
		batch := collections[start:min(start+maxRowsPerInsert, len(collections))]

		const cols = 5
		args := make([]interface{}, 0, len(batch)*cols)
		values := make([]string, 0, len(batch))
		for i, c := range batch {
			values = append(values, placeholders(i*cols, cols))
			args = append(args, c.Chain, c.TokenAddress, c.Name, c.Symbol, c.LogoURL)
		}

		query := fmt.Sprintf(`
			INSERT INTO collections (chain, token_address, name, symbol, logo_url)
			VALUES %s
			ON CONFLICT (chain, token_address) DO NOTHING
		`, strings.Join(values, ", "))
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("bulk insert collections: %w", err)
		}
	}
	return nil
}

func (r *HoldingsRepo) ListTokenIDsByOwner(ctx context.Context, chain model.Chain, owner string) ([]string, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM tokens
		WHERE owner_wallet_address = $1 AND chain = $2
		ORDER BY id
	`, owner, chain)
	if err != nil {
		return nil, fmt.Errorf("list token ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list token ids scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateTokens inserts tokens in multi-VALUES batches. An id that already
// exists is reassigned to the incoming owner.
func (r *HoldingsRepo) CreateTokens(ctx context.Context, tokens []model.Token) error {
	ctx, cancel := withTimeout(ctx, LongQueryTimeout)
	defer cancel()

	// One statement cannot upsert the same id twice.
	tokens = dedupeTokens(tokens)

	for start := 0; start < len(tokens); start += maxRowsPerInsert {
		batch := tokens[start:min(start+maxRowsPerInsert, len(tokens))]

		const cols = 8
		args := make([]interface{}, 0, len(batch)*cols)
		values := make([]string, 0, len(batch))
		for i, t := range batch {
			values = append(values, placeholders(i*cols, cols))
			args = append(args,
				t.ID, t.Chain, t.CollectionAddress, t.TokenID,
				t.Name, t.ImageURL, t.OwnerWalletAddress, t.LastObservedAt,
			)
		}

		query := fmt.Sprintf(`
			INSERT INTO tokens (id, chain, collection_address, token_id, name, image_url, owner_wallet_address, last_observed_at)
			VALUES %s
			ON CONFLICT (id) DO UPDATE SET
				owner_wallet_address = EXCLUDED.owner_wallet_address,
				name = EXCLUDED.name,
				image_url = EXCLUDED.image_url,
				last_observed_at = EXCLUDED.last_observed_at
		`, strings.Join(values, ", "))
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("bulk upsert tokens: %w", err)
		}
	}
	return nil
}

func (r *HoldingsRepo) TouchTokens(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, LongQueryTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		UPDATE tokens SET last_observed_at = $2
		WHERE id = ANY($1)
	`, pq.Array(ids), at); err != nil {
		return fmt.Errorf("touch tokens: %w", err)
	}
	return nil
}

func (r *HoldingsRepo) DeleteTokens(ctx context.Context, owner string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := withTimeout(ctx, LongQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM tokens
		WHERE owner_wallet_address = $1 AND id = ANY($2)
	`, owner, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete tokens rows affected: %w", err)
	}
	return int(n), nil
}

func (r *HoldingsRepo) ListHoldingsByOwners(ctx context.Context, owners []string, offset, limit int) ([]model.NormalizedCollection, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	// Groups are windowed before their tokens are joined, so a page reads
	// only the collections it returns.
	rows, err := r.db.QueryContext(ctx, `
		WITH groups AS (
			SELECT DISTINCT array_position($1::text[], t.owner_wallet_address) AS pos,
			       t.owner_wallet_address, t.chain, t.collection_address
			FROM tokens t
			JOIN collections c ON c.chain = t.chain AND c.token_address = t.collection_address
			WHERE t.owner_wallet_address = ANY($1::text[])
			ORDER BY pos, chain, collection_address
			OFFSET $2
			LIMIT NULLIF($3::int, 0)
		)
		SELECT t.chain, t.collection_address, c.name, c.symbol, c.logo_url,
		       t.id, t.token_id, t.name, t.image_url, t.owner_wallet_address
		FROM groups g
		JOIN tokens t ON t.owner_wallet_address = g.owner_wallet_address
		             AND t.chain = g.chain
		             AND t.collection_address = g.collection_address
		JOIN collections c ON c.chain = t.chain AND c.token_address = t.collection_address
		ORDER BY g.pos, g.chain, g.collection_address, t.id
	`, pq.Array(owners), max(offset, 0), limit)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	var out []model.NormalizedCollection
	for rows.Next() {
		var (
			col model.NormalizedCollection
			tok model.NormalizedToken
		)
		if err := rows.Scan(
			&col.Chain, &col.TokenAddress, &col.Name, &col.Symbol, &col.CollectionLogo,
			&tok.ID, &tok.TokenID, &tok.Name, &tok.ImageURL, &tok.OwnerWalletAddress,
		); err != nil {
			return nil, fmt.Errorf("list holdings scan: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].Key() != col.Key() || out[n-1].Tokens[0].OwnerWalletAddress != tok.OwnerWalletAddress {
			col.ChainSymbol = col.Chain.Symbol()
			out = append(out, col)
		}
		last := &out[len(out)-1]
		last.Tokens = append(last.Tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list holdings rows: %w", err)
	}
	return out, nil
}

// dedupeTokens keeps the last occurrence of each id, in first-seen order.
func dedupeTokens(tokens []model.Token) []model.Token {
	index := make(map[string]int, len(tokens))
	out := make([]model.Token, 0, len(tokens))
	for _, t := range tokens {
		if i, ok := index[t.ID]; ok {
			out[i] = t
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}

// placeholders renders "($base+1, ..., $base+n)".
func placeholders(base, n int) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", base+i)
	}
	b.WriteByte(')')
	return b.String()
}
