package bunstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Open connects to sqlite through sqliteshim, which picks the cgo or pure-Go
// driver available at build time.
func Open(dsn string) (*bun.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty SQLITE_DSN")
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; one connection also keeps ":memory:" databases shared.
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the users table and its token index if missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*userModel)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	if _, err := db.NewCreateIndex().
		Model((*userModel)(nil)).
		Index("users_email_verification_token_idx").
		Unique().
		IfNotExists().
		Column("email_verification_token").
		Exec(ctx); err != nil {
		return fmt.Errorf("create token index: %w", err)
	}
	return nil
}
