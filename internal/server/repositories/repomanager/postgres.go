package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fairdraw/internal/dbx"
	"github.com/dmitrijs2005/fairdraw/internal/server/migrations"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/entries"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/giveaways"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresManager struct{}

func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

func (m *PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func (m *PostgresManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewPostgresRepository(db)
}

func (m *PostgresManager) Giveaways(db dbx.DBTX) giveaways.Repository {
	return giveaways.NewPostgresRepository(db)
}
