package users

import (
	"context"

	"github.com/dmitrijs2005/fairdraw/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, username string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
