package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userreg/internal/dbx"
	"github.com/dmitrijs2005/userreg/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle or transaction
// and prepares the schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
