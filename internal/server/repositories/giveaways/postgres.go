// Package giveaways provides the PostgreSQL-backed repository for giveaway
// records, including the conditional winner write that guarantees
// at-most-once selection.
package giveaways

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/dbx"
	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/dmitrijs2005/fairdraw/internal/shared"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// publicColumns deliberately excludes the seed column: the sealed seed never
// travels through a public read path.
const publicColumns = `id, public_id, title, ends_at, seed_hash, revealed_seed,
	entries_hash, pick_hash, winner_index, winner_entry_id, winner_user_id,
	late_committed, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGiveaway(row rowScanner) (*models.Giveaway, error) {
	g := &models.Giveaway{}
	var seedHash, revealedSeed, entriesHash, pickHash sql.NullString
	var winnerIndex sql.NullInt32
	var winnerEntryID, winnerUserID sql.NullInt64

	err := row.Scan(&g.ID, &g.PublicID, &g.Title, &g.EndsAt, &seedHash, &revealedSeed,
		&entriesHash, &pickHash, &winnerIndex, &winnerEntryID, &winnerUserID,
		&g.LateCommitted, &g.Status, &g.CreatedAt)
	if err != nil {
		return nil, err
	}

	g.SeedHash = seedHash.String
	g.RevealedSeed = revealedSeed.String
	g.EntriesHash = entriesHash.String
	g.PickHash = pickHash.String
	if winnerIndex.Valid {
		idx := int(winnerIndex.Int32)
		g.WinnerIndex = &idx
	}
	if winnerEntryID.Valid {
		g.WinnerEntryID = &winnerEntryID.Int64
	}
	if winnerUserID.Valid {
		g.WinnerUserID = &winnerUserID.Int64
	}
	return g, nil
}

func (r *PostgresRepository) Create(ctx context.Context, g *models.Giveaway) (*models.Giveaway, error) {
	query := `
		INSERT INTO giveaways (public_id, title, ends_at, seed_hash, seed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		g.PublicID, g.Title, g.EndsAt, g.SeedHash, g.Seed).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	g.Status = models.StatusOpen
	return g, nil
}

func (r *PostgresRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Giveaway, error) {
	query := `SELECT ` + publicColumns + ` FROM giveaways WHERE public_id = $1`

	g, err := scanGiveaway(r.db.QueryRowContext(ctx, query, publicID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	query := `SELECT ` + publicColumns + ` FROM giveaways WHERE id = $1`

	g, err := scanGiveaway(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

// GetForDraw is the one read that surfaces the sealed seed. Callers must
// have checked that the entry window is closed.
func (r *PostgresRepository) GetForDraw(ctx context.Context, id int64) (*models.Giveaway, string, error) {
	g, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var seed sql.NullString
	err = r.db.QueryRowContext(ctx, `SELECT seed FROM giveaways WHERE id = $1`, id).Scan(&seed)
	if err != nil {
		return nil, "", fmt.Errorf("db error: %w", err)
	}

	return g, seed.String, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*models.Giveaway, error) {
	query := `SELECT ` + publicColumns + ` FROM giveaways ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Giveaway
	for rows.Next() {
		g, err := scanGiveaway(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Giveaway, error) {
	query := `
		SELECT id FROM giveaways
		WHERE status = 'open' AND ends_at <= $1
		ORDER BY ends_at ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*models.Giveaway, 0, len(ids))
	for _, id := range ids {
		g, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, nil
}

// RecordWinner is the single concurrency-critical write of the whole system:
// winner fields are set only if none are set yet. Concurrent draws race on
// this statement and exactly one wins; the rest see zero rows affected.
func (r *PostgresRepository) RecordWinner(ctx context.Context, rec *WinnerRecord) error {
	query := `
		UPDATE giveaways
		SET revealed_seed = $2, entries_hash = $3, pick_hash = $4,
			winner_index = $5, winner_entry_id = $6, winner_user_id = $7,
			status = 'drawn'
		WHERE id = $1 AND winner_entry_id IS NULL AND status = 'open'
	`

	res, err := r.db.ExecContext(ctx, query,
		rec.GiveawayID, rec.RevealedSeed, rec.EntriesHash, rec.PickHash,
		rec.WinnerIndex, rec.WinnerEntryID, rec.WinnerUserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return shared.ErrorWinnerAlreadyDrawn
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) MarkEndedNoEntries(ctx context.Context, id int64) error {
	query := `
		UPDATE giveaways
		SET status = 'ended_no_entries'
		WHERE id = $1 AND winner_entry_id IS NULL AND status = 'open'
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return shared.ErrorWinnerAlreadyDrawn
	}
	return nil
}

func (r *PostgresRepository) SetCommitment(ctx context.Context, id int64, seed, seedHash string, late bool) error {
	query := `
		UPDATE giveaways
		SET seed = $2, seed_hash = $3, late_committed = $4
		WHERE id = $1 AND seed_hash IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, id, seed, seedHash, late)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return shared.ErrorAlreadyCommitted
	}
	return nil
}
