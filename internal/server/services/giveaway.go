// Package services holds the server-side application services that sit
// between the HTTP layer and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/dbx"
	"github.com/dmitrijs2005/fairdraw/internal/fair"
	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fairdraw/internal/shared"
	"github.com/google/uuid"
)

type GiveawayService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewGiveawayService(db *sql.DB, rm repomanager.RepositoryManager) *GiveawayService {
	return &GiveawayService{db: db, rm: rm}
}

// Create persists a new giveaway and issues its commitment in the same
// write: the seed is generated before any entry can exist, which is what
// makes the commitment meaningful. Only the hash leaves this method.
func (s *GiveawayService) Create(ctx context.Context, title string, endsAt time.Time) (*models.Giveaway, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", shared.ErrorValidation)
	}
	if !endsAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: ends_at must be in the future", shared.ErrorValidation)
	}

	seed, err := fair.NewSeed()
	if err != nil {
		return nil, err
	}

	g := &models.Giveaway{
		PublicID: uuid.New(),
		Title:    title,
		EndsAt:   endsAt,
		Seed:     seed.Hex(),
		SeedHash: seed.CommitHash(),
	}

	g, err = s.rm.Giveaways(s.db).Create(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("error creating giveaway: %w", err)
	}

	// the sealed seed has been persisted; drop it from the returned model
	g.Seed = ""
	return g, nil
}

// Get returns the public view of a giveaway.
func (s *GiveawayService) Get(ctx context.Context, publicID uuid.UUID) (*models.Giveaway, error) {
	return s.rm.Giveaways(s.db).GetByPublicID(ctx, publicID)
}

// List returns the most recently created giveaways.
func (s *GiveawayService) List(ctx context.Context, limit int) ([]*models.Giveaway, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.rm.Giveaways(s.db).List(ctx, limit)
}

// EntryCount returns the number of entries recorded for a giveaway.
func (s *GiveawayService) EntryCount(ctx context.Context, giveawayID int64) (int, error) {
	return s.rm.Entries(s.db).Count(ctx, giveawayID)
}

// Enter adds a user's entry to an open giveaway.
func (s *GiveawayService) Enter(ctx context.Context, publicID uuid.UUID, userID int64) (*models.Entry, error) {
	g, err := s.rm.Giveaways(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	entry, err := s.rm.Entries(s.db).Add(ctx, g.ID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrorGiveawayClosed) || errors.Is(err, shared.ErrorAlreadyEntered) {
			return nil, err
		}
		return nil, fmt.Errorf("error adding entry: %w", err)
	}

	return entry, nil
}

// Commit backfills a commitment onto a legacy giveaway created before
// commitments existed. The row is flagged late-committed: entries may
// already be known, so the binding guarantee is weaker and the proof says so.
// The check and the write run in one transaction.
func (s *GiveawayService) Commit(ctx context.Context, publicID uuid.UUID) (*models.Giveaway, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Giveaways(tx)

		g, err := repo.GetByPublicID(ctx, publicID)
		if err != nil {
			return err
		}
		if g.SeedHash != "" {
			return shared.ErrorAlreadyCommitted
		}

		seed, err := fair.NewSeed()
		if err != nil {
			return err
		}

		return repo.SetCommitment(ctx, g.ID, seed.Hex(), seed.CommitHash(), true)
	})
	if err != nil {
		return nil, err
	}

	return s.rm.Giveaways(s.db).GetByPublicID(ctx, publicID)
}
