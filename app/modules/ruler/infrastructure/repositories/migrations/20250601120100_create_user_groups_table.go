package rulermigrations

import (
	"context"
	"fmt"

	rulerdb "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating user_groups table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*rulerdb.GroupMembership)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create user_groups table: %w", err)
			}

			if _, err := tx.NewCreateIndex().
				Model((*rulerdb.GroupMembership)(nil)).
				Index("idx_user_groups_group_id").
				Column("group_id").
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to index user_groups: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping user_groups table...")

		if _, err := db.NewDropTable().
			Model((*rulerdb.GroupMembership)(nil)).
			IfExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop user_groups table: %w", err)
		}
		return nil
	})
}
