package txutil

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Bind returns a gorm handle that executes on tx when tx is set, otherwise on db's pool.
// Services own the *sql.Tx (BeginTx/Commit/Rollback); repositories only borrow it.
func Bind(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db.WithContext(ctx)
	}

	bound := db.Session(&gorm.Session{Context: ctx, NewDB: true})
	bound.Statement.ConnPool = tx
	return bound
}
