// Package scheduler runs the periodic sweep that draws giveaways whose
// entry window has closed.
package scheduler

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/fair"
	"github.com/dmitrijs2005/fairdraw/internal/logging"
	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/dmitrijs2005/fairdraw/internal/server/services"
	"github.com/google/uuid"
)

const tickTimeout = 30 * time.Second

type DrawRunner interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Giveaway, error)
	Draw(ctx context.Context, giveawayID int64, now time.Time) (*services.DrawOutcome, error)
}

type ProofBuilder interface {
	BuildProof(ctx context.Context, publicID uuid.UUID) (*fair.Proof, error)
}

// ProofArchiver persists a finished draw's proof document to external
// storage. Archiving is best-effort: failures are logged, never retried
// within the tick, and never affect the recorded winner.
type ProofArchiver interface {
	Put(ctx context.Context, publicID uuid.UUID, proof *fair.Proof) error
}

type Scheduler struct {
	draws     DrawRunner
	proofs    ProofBuilder
	archive   ProofArchiver // nil when archiving is not configured
	interval  time.Duration
	batchSize int
	logger    logging.Logger
}

func New(draws DrawRunner, proofs ProofBuilder, archive ProofArchiver,
	interval time.Duration, batchSize int, logger logging.Logger) *Scheduler {
	return &Scheduler{
		draws:     draws,
		proofs:    proofs,
		archive:   archive,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.With("module", "scheduler"),
	}
}

// Run blocks until ctx is cancelled, sweeping due giveaways on every tick.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tctx, cancel := context.WithTimeout(ctx, tickTimeout)
			s.RunOnce(tctx, time.Now())
			cancel()
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce performs a single sweep. One failed giveaway does not stop the
// rest of the batch.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) {
	due, err := s.draws.ListDue(ctx, now, s.batchSize)
	if err != nil {
		s.logger.Error(ctx, "listing due giveaways failed", "error", err.Error())
		return
	}

	for _, g := range due {
		if err := ctx.Err(); err != nil {
			return
		}

		outcome, err := s.draws.Draw(ctx, g.ID, now)
		if err != nil {
			s.logger.Error(ctx, "draw failed", "giveaway_id", g.ID, "error", err.Error())
			continue
		}

		if outcome.Result != nil {
			s.archiveProof(ctx, g.PublicID)
		}
	}
}

func (s *Scheduler) archiveProof(ctx context.Context, publicID uuid.UUID) {
	if s.archive == nil {
		return
	}

	proof, err := s.proofs.BuildProof(ctx, publicID)
	if err != nil {
		s.logger.Error(ctx, "building proof for archive failed", "public_id", publicID.String(), "error", err.Error())
		return
	}

	if err := s.archive.Put(ctx, publicID, proof); err != nil {
		s.logger.Error(ctx, "archiving proof failed", "public_id", publicID.String(), "error", err.Error())
	}
}
