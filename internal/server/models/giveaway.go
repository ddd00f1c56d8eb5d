package models

import (
	"time"

	"github.com/google/uuid"
)

// Giveaway lifecycle states.
const (
	StatusOpen           = "open"
	StatusDrawn          = "drawn"
	StatusEndedNoEntries = "ended_no_entries"
)

// Giveaway is one raffle round. Seed is the committed secret: it is written
// once at creation, never included in any outward-facing payload, and copied
// into RevealedSeed only when the winner is drawn. SeedHash is public from
// the moment of creation.
type Giveaway struct {
	ID           int64
	PublicID     uuid.UUID
	Title        string
	EndsAt       time.Time
	SeedHash     string
	Seed         string
	RevealedSeed string

	// Pick record, populated by the draw. Stored values are the source of
	// truth; proofs recompute them and must agree.
	EntriesHash   string
	PickHash      string
	WinnerIndex   *int
	WinnerEntryID *int64
	WinnerUserID  *int64

	LateCommitted bool
	Status        string
	CreatedAt     time.Time
}

// HasWinner reports whether a winner has been recorded.
func (g *Giveaway) HasWinner() bool {
	return g.WinnerEntryID != nil
}

// Ended reports whether the entry window has closed as of now.
func (g *Giveaway) Ended(now time.Time) bool {
	return !g.EndsAt.After(now)
}

// Revealed reports whether the committed seed has been disclosed.
func (g *Giveaway) Revealed() bool {
	return g.RevealedSeed != ""
}
