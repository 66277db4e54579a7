package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/atskeeper/internal/dbx"
	"github.com/dmitrijs2005/atskeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/atskeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// use the same repository code inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
