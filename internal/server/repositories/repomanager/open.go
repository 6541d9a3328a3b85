package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dinoauth/internal/dbx"
	"github.com/dmitrijs2005/dinoauth/internal/server/config"
	"github.com/dmitrijs2005/dinoauth/internal/server/repositories/users"
)

// openPostgres is a seam for tests.
var openPostgres = dbx.OpenPostgres

// OpenDirectory returns the user repository selected by dsn: the in-memory
// one for config.MemoryDSN, otherwise PostgreSQL with the schema migrated.
// The returned *sql.DB is nil for the in-memory backend; callers close it
// otherwise.
func OpenDirectory(ctx context.Context, dsn string) (users.Repository, *sql.DB, error) {
	if dsn == config.MemoryDSN {
		return users.NewMemoryRepository(), nil, nil
	}

	db, err := openPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	rm := NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations error: %w", err)
	}
	return rm.Users(db), db, nil
}
