package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/dbx"
	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	entriesrepo "github.com/dmitrijs2005/fairdraw/internal/server/repositories/entries"
	giveawaysrepo "github.com/dmitrijs2005/fairdraw/internal/server/repositories/giveaways"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/fairdraw/internal/server/repositories/users"
	"github.com/dmitrijs2005/fairdraw/internal/shared"
	"github.com/google/uuid"
)

// --- in-memory fakes with the same conditional-write semantics as postgres ---

type fakeGiveawaysRepo struct {
	mu sync.Mutex

	g    *models.Giveaway
	seed string

	createErr error
	listErr   error

	recordCalls int
	commitCalls int
}

func (f *fakeGiveawaysRepo) Create(ctx context.Context, g *models.Giveaway) (*models.Giveaway, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = 42
	g.CreatedAt = time.Now()
	g.Status = models.StatusOpen
	f.seed = g.Seed
	snapshot := *g
	f.g = &snapshot
	return g, nil
}

func (f *fakeGiveawaysRepo) get() *models.Giveaway {
	snapshot := *f.g
	return &snapshot
}

func (f *fakeGiveawaysRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Giveaway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.g == nil || f.g.PublicID != publicID {
		return nil, shared.ErrorNotFound
	}
	return f.get(), nil
}

func (f *fakeGiveawaysRepo) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.g == nil || f.g.ID != id {
		return nil, shared.ErrorNotFound
	}
	return f.get(), nil
}

func (f *fakeGiveawaysRepo) GetForDraw(ctx context.Context, id int64) (*models.Giveaway, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.g == nil || f.g.ID != id {
		return nil, "", shared.ErrorNotFound
	}
	return f.get(), f.seed, nil
}

func (f *fakeGiveawaysRepo) List(ctx context.Context, limit int) ([]*models.Giveaway, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.g == nil {
		return nil, nil
	}
	return []*models.Giveaway{f.get()}, nil
}

func (f *fakeGiveawaysRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Giveaway, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.g != nil && f.g.Status == models.StatusOpen && f.g.Ended(now) {
		return []*models.Giveaway{f.get()}, nil
	}
	return nil, nil
}

func (f *fakeGiveawaysRepo) RecordWinner(ctx context.Context, rec *giveawaysrepo.WinnerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordCalls++
	if f.g.WinnerEntryID != nil || f.g.Status != models.StatusOpen {
		return shared.ErrorWinnerAlreadyDrawn
	}
	f.g.RevealedSeed = rec.RevealedSeed
	f.g.EntriesHash = rec.EntriesHash
	f.g.PickHash = rec.PickHash
	idx := rec.WinnerIndex
	f.g.WinnerIndex = &idx
	entryID := rec.WinnerEntryID
	f.g.WinnerEntryID = &entryID
	userID := rec.WinnerUserID
	f.g.WinnerUserID = &userID
	f.g.Status = models.StatusDrawn
	return nil
}

func (f *fakeGiveawaysRepo) MarkEndedNoEntries(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.g.WinnerEntryID != nil || f.g.Status != models.StatusOpen {
		return shared.ErrorWinnerAlreadyDrawn
	}
	f.g.Status = models.StatusEndedNoEntries
	return nil
}

func (f *fakeGiveawaysRepo) SetCommitment(ctx context.Context, id int64, seed, seedHash string, late bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commitCalls++
	if f.g.SeedHash != "" {
		return shared.ErrorAlreadyCommitted
	}
	f.seed = seed
	f.g.SeedHash = seedHash
	f.g.LateCommitted = late
	return nil
}

type fakeEntriesRepo struct {
	entries []*models.Entry
	addErr  error
	listErr error
}

func (f *fakeEntriesRepo) Add(ctx context.Context, giveawayID, userID int64) (*models.Entry, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	e := &models.Entry{ID: int64(len(f.entries) + 1), GiveawayID: giveawayID, UserID: userID}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeEntriesRepo) ListByGiveaway(ctx context.Context, giveawayID int64) ([]*models.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeEntriesRepo) Count(ctx context.Context, giveawayID int64) (int, error) {
	return len(f.entries), nil
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error
	getOut    *models.User
	getErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, username string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRepoManager struct {
	g *fakeGiveawaysRepo
	e *fakeEntriesRepo
	u *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entriesrepo.Repository     { return m.e }
func (m *fakeRepoManager) Giveaways(db dbx.DBTX) giveawaysrepo.Repository { return m.g }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)
