// Package entries provides the PostgreSQL-backed repository for giveaway
// entries. Entry ids come from a bigserial sequence, which is what makes the
// ascending snapshot ordering reproducible.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fairdraw/internal/dbx"
	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/dmitrijs2005/fairdraw/internal/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, giveawayID, userID int64) (*models.Entry, error) {
	// The EXISTS guard keeps the insert and the open-window check in one
	// statement, so an entry can never land after the window closes.
	query := `
		INSERT INTO entries (giveaway_id, user_id)
		SELECT $1, $2
		WHERE EXISTS (
			SELECT 1 FROM giveaways
			WHERE id = $1 AND status = 'open' AND ends_at > now()
		)
		RETURNING id, created_at
	`

	entry := &models.Entry{GiveawayID: giveawayID, UserID: userID}
	err := r.db.QueryRowContext(ctx, query, giveawayID, userID).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorGiveawayClosed
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrorAlreadyEntered
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

func (r *PostgresRepository) ListByGiveaway(ctx context.Context, giveawayID int64) ([]*models.Entry, error) {
	query := `
		SELECT id, giveaway_id, user_id, created_at FROM entries
		WHERE giveaway_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(&item.ID, &item.GiveawayID, &item.UserID, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}

	return result, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context, giveawayID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE giveaway_id = $1`, giveawayID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
