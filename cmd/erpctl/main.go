// Command erpctl runs operator tasks against the ERP database.
package main

import (
	"context"
	"fmt"
	"os"

	"interiors-erp/internal/auth"
	"interiors-erp/internal/config"
	"interiors-erp/internal/database"
	"interiors-erp/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "erpctl",
		Short:         "Operator tasks for the interiors ERP backend",
		SilenceUsage:  true,
	}
	root.AddCommand(migrateCmd(), hashPasswordCmd(), purgeSessionsCmd())
	return root
}

func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and apply SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db, logger.New(cfg.Env)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for SUPERADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args[0]) < auth.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
			}
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func purgeSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete expired super admin sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			n, err := auth.NewSessionStore(db).PurgeExpired(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", n)
			return nil
		},
	}
}
