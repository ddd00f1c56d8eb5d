package giveaways

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/google/uuid"
)

// WinnerRecord is everything the draw writes in its single conditional
// update: the revealed seed plus the full pick record.
type WinnerRecord struct {
	GiveawayID    int64
	RevealedSeed  string
	EntriesHash   string
	PickHash      string
	WinnerIndex   int
	WinnerEntryID int64
	WinnerUserID  int64
}

type Repository interface {
	// Create persists a new giveaway together with its commitment. The seed
	// is stored but only the hash ever appears in public reads.
	Create(ctx context.Context, g *models.Giveaway) (*models.Giveaway, error)

	// GetByPublicID and GetByID return the public view: the seed column is
	// not selected, only revealed_seed.
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Giveaway, error)
	GetByID(ctx context.Context, id int64) (*models.Giveaway, error)

	// GetForDraw returns the giveaway including the sealed seed. Only the
	// draw path may call it, and only after the entry window has closed.
	GetForDraw(ctx context.Context, id int64) (*models.Giveaway, string, error)

	// List returns the most recently created giveaways, public view only.
	List(ctx context.Context, limit int) ([]*models.Giveaway, error)

	// ListDue returns open giveaways whose entry window has passed.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Giveaway, error)

	// RecordWinner performs the at-most-once conditional write: it succeeds
	// only if no winner is currently set. Losing the race returns
	// shared.ErrorWinnerAlreadyDrawn.
	RecordWinner(ctx context.Context, rec *WinnerRecord) error

	// MarkEndedNoEntries moves an open, winnerless giveaway to the terminal
	// "ended, no winner possible" state.
	MarkEndedNoEntries(ctx context.Context, id int64) error

	// SetCommitment backfills a commitment onto a legacy row that has none.
	// Succeeds only while seed_hash is still null; the row is flagged
	// late-committed for the audit trail.
	SetCommitment(ctx context.Context, id int64, seed, seedHash string, late bool) error
}
