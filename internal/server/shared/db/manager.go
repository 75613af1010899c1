package db

import (
	"context"
	"database/sql"

	"github.com/listenalong/backend/internal/server/repositories/parties"
	"github.com/listenalong/backend/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Parties() parties.Repository
}
