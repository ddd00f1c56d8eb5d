// Package repomanager aggregates the repositories behind a single interface
// so services can run them against either *sql.DB or a transaction handle.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fairdraw/internal/dbx"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/entries"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/giveaways"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Entries(db dbx.DBTX) entries.Repository
	Giveaways(db dbx.DBTX) giveaways.Repository
}
