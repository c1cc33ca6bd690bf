package integration

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// poolFor opens a short-lived pool for direct cleanup queries the
// auth.Store API doesn't expose (e.g. bulk-deleting test fixtures).
func poolFor(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, dsn)
}
