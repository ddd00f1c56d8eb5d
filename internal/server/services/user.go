package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/fairdraw/internal/server/models"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fairdraw/internal/shared"
)

type UserService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, rm: rm}
}

func (s *UserService) Register(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", shared.ErrorValidation)
	}

	user, err := s.rm.Users(s.db).Create(ctx, username)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.rm.Users(s.db).GetByUsername(ctx, username)
}
