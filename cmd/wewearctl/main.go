package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wewearapi/config"
	"wewearapi/dbhelper"
	"wewearapi/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "wewearctl",
	Short: "Maintenance commands for the WeWear backend",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_, err := logger.Init(config.Load().Env)
		return err
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(urgencyCmd())
	rootCmd.AddCommand(laundryCmd())
}

func openDB() (*gorm.DB, error) {
	db, err := dbhelper.Connect()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			if err := dbhelper.MigrateAll(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
