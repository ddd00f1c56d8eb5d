package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/fair"
	"github.com/dmitrijs2005/fairdraw/internal/logging"
	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/dmitrijs2005/fairdraw/internal/server/services"
	"github.com/google/uuid"
)

type fakeDrawRunner struct {
	due     []*models.Giveaway
	listErr error

	drawErr  map[int64]error
	outcomes map[int64]*services.DrawOutcome
	drawn    []int64
}

func (f *fakeDrawRunner) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Giveaway, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.due, nil
}

func (f *fakeDrawRunner) Draw(ctx context.Context, giveawayID int64, now time.Time) (*services.DrawOutcome, error) {
	f.drawn = append(f.drawn, giveawayID)
	if err := f.drawErr[giveawayID]; err != nil {
		return nil, err
	}
	if o := f.outcomes[giveawayID]; o != nil {
		return o, nil
	}
	return &services.DrawOutcome{AlreadyDrawn: true}, nil
}

type fakeProofBuilder struct {
	proof *fair.Proof
	err   error
}

func (f *fakeProofBuilder) BuildProof(ctx context.Context, publicID uuid.UUID) (*fair.Proof, error) {
	return f.proof, f.err
}

type fakeArchiver struct {
	mu   sync.Mutex
	puts []uuid.UUID
	err  error
}

func (f *fakeArchiver) Put(ctx context.Context, publicID uuid.UUID, proof *fair.Proof) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, publicID)
	return f.err
}

func due(ids ...int64) []*models.Giveaway {
	gs := make([]*models.Giveaway, len(ids))
	for i, id := range ids {
		gs[i] = &models.Giveaway{ID: id, PublicID: uuid.New(), Status: models.StatusOpen}
	}
	return gs
}

func won() *services.DrawOutcome {
	return &services.DrawOutcome{Result: &fair.Result{WinnerEntryID: 101}}
}

func TestRunOnce_DrawsEveryDueGiveaway(t *testing.T) {
	runner := &fakeDrawRunner{due: due(1, 2, 3)}
	s := New(runner, &fakeProofBuilder{}, nil, time.Minute, 10, logging.NewJSONLogger())

	s.RunOnce(context.Background(), time.Now())

	if len(runner.drawn) != 3 {
		t.Fatalf("drawn %v, want all three", runner.drawn)
	}
}

func TestRunOnce_OneFailureDoesNotStopTheBatch(t *testing.T) {
	runner := &fakeDrawRunner{
		due:     due(1, 2, 3),
		drawErr: map[int64]error{2: errors.New("db error")},
	}
	s := New(runner, &fakeProofBuilder{}, nil, time.Minute, 10, logging.NewJSONLogger())

	s.RunOnce(context.Background(), time.Now())

	if len(runner.drawn) != 3 {
		t.Fatalf("drawn %v, want the failing giveaway skipped, not the batch aborted", runner.drawn)
	}
}

func TestRunOnce_ArchivesOnlyFreshWins(t *testing.T) {
	gs := due(1, 2)
	runner := &fakeDrawRunner{
		due: gs,
		outcomes: map[int64]*services.DrawOutcome{
			1: won(),
			2: {AlreadyDrawn: true},
		},
	}
	archive := &fakeArchiver{}
	s := New(runner, &fakeProofBuilder{proof: &fair.Proof{GiveawayID: 1}}, archive, time.Minute, 10, logging.NewJSONLogger())

	s.RunOnce(context.Background(), time.Now())

	if len(archive.puts) != 1 || archive.puts[0] != gs[0].PublicID {
		t.Fatalf("archived %v, want exactly the fresh win", archive.puts)
	}
}

func TestRunOnce_ArchiveFailureIsNotFatal(t *testing.T) {
	runner := &fakeDrawRunner{
		due:      due(1, 2),
		outcomes: map[int64]*services.DrawOutcome{1: won(), 2: won()},
	}
	archive := &fakeArchiver{err: errors.New("bucket unreachable")}
	s := New(runner, &fakeProofBuilder{proof: &fair.Proof{}}, archive, time.Minute, 10, logging.NewJSONLogger())

	s.RunOnce(context.Background(), time.Now())

	if len(runner.drawn) != 2 {
		t.Fatalf("drawn %v, want both despite archive errors", runner.drawn)
	}
}

func TestRunOnce_NoArchiverConfigured(t *testing.T) {
	runner := &fakeDrawRunner{due: due(1), outcomes: map[int64]*services.DrawOutcome{1: won()}}
	s := New(runner, &fakeProofBuilder{err: errors.New("must not be called")}, nil, time.Minute, 10, logging.NewJSONLogger())

	// must not panic and must not try to build a proof
	s.RunOnce(context.Background(), time.Now())
}

func TestRun_StopsOnCancel(t *testing.T) {
	runner := &fakeDrawRunner{}
	s := New(runner, &fakeProofBuilder{}, nil, time.Millisecond, 10, logging.NewJSONLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
