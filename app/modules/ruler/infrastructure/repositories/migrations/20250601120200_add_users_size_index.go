package rulermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding size index to users...")

		// Both backends accept this form.
		if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_users_size ON users (size DESC, id ASC)`); err != nil {
			return fmt.Errorf("failed to create idx_users_size: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping size index from users...")

		if _, err := db.ExecContext(ctx, `DROP INDEX IF EXISTS idx_users_size`); err != nil {
			return fmt.Errorf("failed to drop idx_users_size: %w", err)
		}
		return nil
	})
}
