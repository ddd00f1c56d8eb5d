package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/fair"
	"github.com/dmitrijs2005/fairdraw/internal/logging"
	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/giveaways"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fairdraw/internal/shared"
)

// DrawOutcome describes what one draw attempt did.
type DrawOutcome struct {
	Giveaway *models.Giveaway

	// Result is set when this attempt recorded the winner.
	Result       *fair.Result
	WinnerUserID int64

	// AlreadyDrawn means another instance recorded the winner first; the
	// lost race counts as success-of-someone-else.
	AlreadyDrawn bool

	// NoEntries means the giveaway ended with an empty snapshot and was
	// moved to the terminal no-winner state.
	NoEntries bool
}

// DrawService runs the winner selection for giveaways whose entry window
// has closed.
type DrawService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	logger logging.Logger
}

func NewDrawService(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *DrawService {
	return &DrawService{db: db, rm: rm, logger: logger.With("module", "draw")}
}

// ListDue returns giveaways ready to be drawn.
func (s *DrawService) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Giveaway, error) {
	return s.rm.Giveaways(s.db).ListDue(ctx, now, limit)
}

// Draw selects and records the winner for one giveaway. It is safe to call
// concurrently for the same giveaway: the winner write is conditional, so
// exactly one caller records a winner and the rest observe AlreadyDrawn.
func (s *DrawService) Draw(ctx context.Context, giveawayID int64, now time.Time) (*DrawOutcome, error) {
	repo := s.rm.Giveaways(s.db)

	g, sealedSeed, err := repo.GetForDraw(ctx, giveawayID)
	if err != nil {
		return nil, err
	}

	if !g.Ended(now) {
		return nil, shared.ErrorGiveawayNotEnded
	}
	if g.HasWinner() || g.Status != models.StatusOpen {
		return &DrawOutcome{Giveaway: g, AlreadyDrawn: true}, nil
	}

	// The snapshot is frozen by this point: the entry window has closed and
	// inserts are SQL-guarded on ends_at, so nothing can be added below.
	snapshot, err := s.rm.Entries(s.db).ListByGiveaway(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	if len(snapshot) == 0 {
		if err := repo.MarkEndedNoEntries(ctx, g.ID); err != nil {
			if errors.Is(err, shared.ErrorWinnerAlreadyDrawn) {
				return &DrawOutcome{Giveaway: g, AlreadyDrawn: true}, nil
			}
			return nil, err
		}
		s.logger.Info(ctx, "giveaway ended with no entries", "giveaway_id", g.ID)
		return &DrawOutcome{Giveaway: g, NoEntries: true}, nil
	}

	if g.SeedHash == "" {
		// Legacy row without a commitment: synthesize one now. The guarantee
		// is weaker (entries were known first), so the row gets flagged and
		// every proof for it carries the late-committed marker.
		sealedSeed, err = s.lateCommit(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		s.logger.Warn(ctx, "late commitment synthesized for legacy giveaway", "giveaway_id", g.ID)
	}

	if sealedSeed == "" {
		return nil, fmt.Errorf("giveaway %d has a commitment but no sealed seed", g.ID)
	}

	ids := make([]int64, len(snapshot))
	userByEntry := make(map[int64]int64, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.ID
		userByEntry[e.ID] = e.UserID
	}

	res, err := fair.Pick(sealedSeed, g.ID, ids)
	if err != nil {
		return nil, err
	}

	rec := &giveaways.WinnerRecord{
		GiveawayID:    g.ID,
		RevealedSeed:  sealedSeed,
		EntriesHash:   res.EntriesHash,
		PickHash:      res.PickHash,
		WinnerIndex:   res.WinnerIndex,
		WinnerEntryID: res.WinnerEntryID,
		WinnerUserID:  userByEntry[res.WinnerEntryID],
	}

	if err := repo.RecordWinner(ctx, rec); err != nil {
		if errors.Is(err, shared.ErrorWinnerAlreadyDrawn) {
			return &DrawOutcome{Giveaway: g, AlreadyDrawn: true}, nil
		}
		return nil, err
	}

	s.logger.Info(ctx, "winner drawn",
		"giveaway_id", g.ID,
		"entry_count", len(ids),
		"winner_index", res.WinnerIndex,
		"winner_entry_id", res.WinnerEntryID,
		"pick_hash", res.PickHash)

	return &DrawOutcome{
		Giveaway:     g,
		Result:       res,
		WinnerUserID: rec.WinnerUserID,
	}, nil
}

func (s *DrawService) lateCommit(ctx context.Context, giveawayID int64) (string, error) {
	seed, err := fair.NewSeed()
	if err != nil {
		return "", err
	}

	err = s.rm.Giveaways(s.db).SetCommitment(ctx, giveawayID, seed.Hex(), seed.CommitHash(), true)
	if err == nil {
		return seed.Hex(), nil
	}
	if !errors.Is(err, shared.ErrorAlreadyCommitted) {
		return "", err
	}

	// another instance committed first; use what it stored
	_, sealed, err := s.rm.Giveaways(s.db).GetForDraw(ctx, giveawayID)
	return sealed, err
}
