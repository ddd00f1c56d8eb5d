package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/fair"
	"github.com/dmitrijs2005/fairdraw/internal/logging"
	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/dmitrijs2005/fairdraw/internal/shared"
	"github.com/google/uuid"
)

const testSeed = "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"

func endedGiveaway(seed string) *fakeGiveawaysRepo {
	seedHash := ""
	if seed != "" {
		seedHash = fair.CommitHashOf(seed)
	}
	return &fakeGiveawaysRepo{
		g: &models.Giveaway{
			ID:       42,
			PublicID: uuid.New(),
			Title:    "weekly drop",
			EndsAt:   time.Now().Add(-time.Minute),
			SeedHash: seedHash,
			Status:   models.StatusOpen,
		},
		seed: seed,
	}
}

func entriesFor(userByEntry map[int64]int64, order []int64) *fakeEntriesRepo {
	f := &fakeEntriesRepo{}
	for _, id := range order {
		f.entries = append(f.entries, &models.Entry{ID: id, GiveawayID: 42, UserID: userByEntry[id]})
	}
	return f
}

func newDrawService(g *fakeGiveawaysRepo, e *fakeEntriesRepo) *DrawService {
	return NewDrawService(nil, &fakeRepoManager{g: g, e: e, u: &fakeUsersRepo{}}, logging.NewJSONLogger())
}

func TestDraw_SelectsPinnedWinner(t *testing.T) {
	g := endedGiveaway(testSeed)
	e := entriesFor(map[int64]int64{101: 1, 102: 2, 103: 3}, []int64{101, 102, 103})
	svc := newDrawService(g, e)

	outcome, err := svc.Draw(context.Background(), 42, time.Now())
	if err != nil {
		t.Fatalf("Draw error: %v", err)
	}
	if outcome.AlreadyDrawn || outcome.NoEntries {
		t.Fatalf("expected a fresh draw, got %+v", outcome)
	}
	if outcome.Result.WinnerEntryID != 102 {
		t.Errorf("winnerEntryId = %d, want 102 (pinned fixture)", outcome.Result.WinnerEntryID)
	}
	if outcome.WinnerUserID != 2 {
		t.Errorf("winnerUserId = %d, want 2", outcome.WinnerUserID)
	}

	// persisted state must carry the full pick record and the revealed seed
	stored := g.get()
	if stored.RevealedSeed != testSeed {
		t.Errorf("revealed seed not persisted")
	}
	if stored.Status != models.StatusDrawn || !stored.HasWinner() {
		t.Errorf("unexpected stored state: %+v", stored)
	}
	if stored.PickHash != outcome.Result.PickHash {
		t.Errorf("stored pick hash differs from computed")
	}
}

func TestDraw_Deterministic(t *testing.T) {
	users := map[int64]int64{101: 1, 102: 2, 103: 3}
	first, err := newDrawService(endedGiveaway(testSeed), entriesFor(users, []int64{101, 102, 103})).
		Draw(context.Background(), 42, time.Now())
	if err != nil {
		t.Fatalf("Draw error: %v", err)
	}
	// same seed and snapshot, different insert order seen by the reader
	second, err := newDrawService(endedGiveaway(testSeed), entriesFor(users, []int64{103, 102, 101})).
		Draw(context.Background(), 42, time.Now())
	if err != nil {
		t.Fatalf("Draw error: %v", err)
	}
	if first.Result.WinnerEntryID != second.Result.WinnerEntryID ||
		first.Result.PickHash != second.Result.PickHash {
		t.Errorf("draw is not deterministic: %+v vs %+v", first.Result, second.Result)
	}
}

func TestDraw_NotEndedYet(t *testing.T) {
	g := endedGiveaway(testSeed)
	g.g.EndsAt = time.Now().Add(time.Hour)
	svc := newDrawService(g, entriesFor(nil, nil))

	if _, err := svc.Draw(context.Background(), 42, time.Now()); err != shared.ErrorGiveawayNotEnded {
		t.Fatalf("expected ErrorGiveawayNotEnded, got %v", err)
	}
}

func TestDraw_EmptySnapshotEndsWithoutWinner(t *testing.T) {
	g := endedGiveaway(testSeed)
	svc := newDrawService(g, &fakeEntriesRepo{})

	outcome, err := svc.Draw(context.Background(), 42, time.Now())
	if err != nil {
		t.Fatalf("Draw error: %v", err)
	}
	if !outcome.NoEntries {
		t.Fatalf("expected NoEntries outcome, got %+v", outcome)
	}
	if g.get().Status != models.StatusEndedNoEntries {
		t.Errorf("status = %s, want %s", g.get().Status, models.StatusEndedNoEntries)
	}
	if g.recordCalls != 0 {
		t.Errorf("no winner write may happen for an empty snapshot")
	}
}

func TestDraw_AlreadyDrawnIsNoOp(t *testing.T) {
	g := endedGiveaway(testSeed)
	winner := int64(101)
	g.g.WinnerEntryID = &winner
	g.g.Status = models.StatusDrawn
	svc := newDrawService(g, entriesFor(map[int64]int64{101: 1}, []int64{101}))

	outcome, err := svc.Draw(context.Background(), 42, time.Now())
	if err != nil {
		t.Fatalf("Draw error: %v", err)
	}
	if !outcome.AlreadyDrawn {
		t.Fatalf("expected AlreadyDrawn, got %+v", outcome)
	}
	if g.recordCalls != 0 {
		t.Errorf("a drawn giveaway must not be written again")
	}
}

func TestDraw_LateCommitForLegacyRow(t *testing.T) {
	g := endedGiveaway("") // legacy: no commitment at creation time
	e := entriesFor(map[int64]int64{101: 1, 102: 2}, []int64{101, 102})
	svc := newDrawService(g, e)

	outcome, err := svc.Draw(context.Background(), 42, time.Now())
	if err != nil {
		t.Fatalf("Draw error: %v", err)
	}
	if outcome.Result == nil {
		t.Fatalf("expected a winner, got %+v", outcome)
	}
	if g.commitCalls != 1 {
		t.Errorf("expected exactly one late commitment, got %d", g.commitCalls)
	}

	stored := g.get()
	if !stored.LateCommitted {
		t.Error("legacy row must be flagged late-committed")
	}
	if !fair.VerifyCommitment(stored.RevealedSeed, stored.SeedHash) {
		t.Error("late commitment must still bind to the revealed seed")
	}
}

func TestDraw_AtMostOnceUnderConcurrency(t *testing.T) {
	g := endedGiveaway(testSeed)
	e := entriesFor(map[int64]int64{101: 1, 102: 2, 103: 3}, []int64{101, 102, 103})
	svc := newDrawService(g, e)

	const n = 16
	outcomes := make([]*DrawOutcome, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = svc.Draw(context.Background(), 42, time.Now())
		}(i)
	}
	wg.Wait()

	winners := 0
	noOps := 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("draw %d failed: %v", i, errs[i])
		}
		if outcomes[i].Result != nil {
			winners++
		}
		if outcomes[i].AlreadyDrawn {
			noOps++
		}
	}
	if winners != 1 {
		t.Fatalf("exactly one draw must record a winner, got %d", winners)
	}
	if noOps != n-1 {
		t.Fatalf("expected %d no-ops, got %d", n-1, noOps)
	}
	if g.get().WinnerEntryID == nil || *g.get().WinnerEntryID != 102 {
		t.Errorf("persisted winner must be the deterministic one")
	}
}

func TestListDue(t *testing.T) {
	g := endedGiveaway(testSeed)
	svc := newDrawService(g, &fakeEntriesRepo{})

	due, err := svc.ListDue(context.Background(), time.Now(), 10)
	if err != nil {
		t.Fatalf("ListDue error: %v", err)
	}
	if len(due) != 1 || due[0].ID != 42 {
		t.Fatalf("unexpected due list: %+v", due)
	}
}
