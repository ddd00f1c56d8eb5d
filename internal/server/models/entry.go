package models

import "time"

// Entry is one user's ticket in a giveaway. IDs come from a bigserial
// sequence, so ascending id order is insertion order and stays reproducible
// for the canonical entry snapshot.
type Entry struct {
	ID         int64
	GiveawayID int64
	UserID     int64
	CreatedAt  time.Time
}
