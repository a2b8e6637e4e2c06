package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"millionaire-service/internal/infra/sqlstore"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return sqlstore.CreateSchema(ctx, db)
		},
		func(ctx context.Context, db *bun.DB) error {
			return sqlstore.DropSchema(ctx, db)
		},
	)
}
