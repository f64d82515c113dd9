package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userreg/internal/dbx"
	"github.com/dmitrijs2005/userreg/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves a single process-local store and ignores
// the DB handle it is given.
type InMemoryRepositoryManager struct {
	users *users.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewInMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}
