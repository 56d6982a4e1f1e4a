package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userkeeper/internal/dbx"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a handle (pool or
// transaction) and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	SchemaVersion(ctx context.Context, db *sql.DB) (int64, error)
	Users(db dbx.DBTX) users.Repository
}
