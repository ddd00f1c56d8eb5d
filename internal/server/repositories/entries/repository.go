package entries

import (
	"context"

	"github.com/dmitrijs2005/fairdraw/internal/server/models"
)

type Repository interface {
	// Add inserts an entry for userID in giveawayID. The insert is guarded
	// in SQL so it only succeeds while the giveaway's entry window is open.
	Add(ctx context.Context, giveawayID, userID int64) (*models.Entry, error)

	// ListByGiveaway returns the giveaway's entries ordered by id ascending.
	// After the giveaway ends this ordered list is the frozen snapshot the
	// winner is selected from.
	ListByGiveaway(ctx context.Context, giveawayID int64) ([]*models.Entry, error)

	Count(ctx context.Context, giveawayID int64) (int, error)
}
