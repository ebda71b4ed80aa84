// Command lostfoundctl операторская утилита: миграции, администраторы и режим обслуживания.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/lostfound-backend/internal/config"
	"github.com/ignatzorin/lostfound-backend/internal/db"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

var (
	verbose bool
	cfg     *config.Config
	conn    *sqlx.DB
)

var rootCmd = &cobra.Command{
	Use:           "lostfoundctl",
	Short:         "Операторская утилита сервиса бюро находок",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Init(logger.Options{Level: level, Text: true})

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		conn, err = db.NewPostgres(cmd.Context(), cfg.DatabaseURL, cfg.DBPool)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if conn != nil {
			_ = conn.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "подробный лог")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(maintenanceCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ошибка:", err)
		os.Exit(1)
	}
}
