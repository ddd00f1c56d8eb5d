package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fairdraw/internal/fair"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ProofService rebuilds the public fairness proof from storage. Building a
// proof is a pure read: nothing is persisted, and the stored winner fields
// remain the source of truth the recomputation is checked against.
type ProofService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewProofService(db *sql.DB, rm repomanager.RepositoryManager) *ProofService {
	return &ProofService{db: db, rm: rm}
}

// BuildProof assembles the proof document for a giveaway. Before the seed is
// revealed it returns the partial form: commitment hash, entry ids, entry
// count and entries hash, with no computed winner. After reveal it re-runs
// the selection from the current entry snapshot and compares the result with
// the stored winner; any divergence surfaces as ok=false, never silently.
func (s *ProofService) BuildProof(ctx context.Context, publicID uuid.UUID) (*fair.Proof, error) {
	g, err := s.rm.Giveaways(s.db).GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.rm.Entries(s.db).ListByGiveaway(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(snapshot))
	userByEntry := make(map[int64]int64, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.ID
		userByEntry[e.ID] = e.UserID
	}
	csv := fair.EntryIDsCSV(ids)

	proof := &fair.Proof{
		GiveawayID:     g.ID,
		SeedCommitHash: g.SeedHash,
		EntriesHash:    fair.EntriesHash(csv),
		EntryIDs:       fair.CanonicalEntryIDs(ids),
		EntryCount:     len(ids),
		LateCommitted:  g.LateCommitted,
	}

	if !g.Revealed() {
		return proof, nil
	}

	proof.RevealedSeed = g.RevealedSeed

	ok := fair.VerifyCommitment(g.RevealedSeed, g.SeedHash)

	res, err := fair.Pick(g.RevealedSeed, g.ID, ids)
	if err != nil {
		// revealed seed but nothing to pick from: the snapshot was emptied
		// after selection, which is itself a fairness violation
		ok = false
		proof.OK = &ok
		return proof, nil
	}

	winnerUserID := userByEntry[res.WinnerEntryID]
	proof.Computed = &fair.ComputedWinner{
		PickHash:      res.PickHash,
		WinnerIndex:   res.WinnerIndex,
		WinnerEntryID: res.WinnerEntryID,
		WinnerUserID:  winnerUserID,
	}

	// the recomputed winner must match what the draw persisted
	if g.WinnerEntryID == nil || *g.WinnerEntryID != res.WinnerEntryID {
		ok = false
	}
	if g.WinnerUserID == nil || *g.WinnerUserID != winnerUserID {
		ok = false
	}
	if g.PickHash != "" && g.PickHash != res.PickHash {
		ok = false
	}
	if g.EntriesHash != "" && g.EntriesHash != res.EntriesHash {
		ok = false
	}

	proof.OK = &ok
	return proof, nil
}
