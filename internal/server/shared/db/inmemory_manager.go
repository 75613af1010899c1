package db

import (
	"context"
	"database/sql"

	"github.com/listenalong/backend/internal/server/repositories/parties"
	"github.com/listenalong/backend/internal/server/repositories/users"
)

type InMemoryRepositoryManager struct {
	users   users.Repository
	parties parties.Repository
}

func (m InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m InMemoryRepositoryManager) Parties() parties.Repository {
	return m.parties
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return InMemoryRepositoryManager{
		users:   users.NewMemoryRepository(),
		parties: parties.NewMemoryRepository(),
	}
}
