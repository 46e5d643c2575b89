package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/webblog/internal/db"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "DATABASE_DSN のデータベースにマイグレーションを適用します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.cfg.DatabaseDSN == "" {
				return errors.New("DATABASE_DSN is required for migrate")
			}
			ctx := cmd.Context()
			conn, err := db.Open(ctx, rt.cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.Migrate(ctx, conn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
