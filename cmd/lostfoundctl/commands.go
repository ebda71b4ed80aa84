package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/lostfound-backend/internal/db"
	"github.com/ignatzorin/lostfound-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
	"github.com/ignatzorin/lostfound-backend/internal/service"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/maintenance"
)

func migrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Применить SQL миграции",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				pending, err := db.PendingMigrations(cmd.Context(), conn, db.MigrationSource(cfg.MigrationsPath))
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "схема актуальна")
				}
				for _, name := range pending {
					fmt.Fprintln(cmd.OutOrStdout(), "ожидает:", name)
				}
				return nil
			}

			applied, err := db.RunMigrations(cmd.Context(), conn, db.MigrationSource(cfg.MigrationsPath))
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "схема актуальна")
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "применена:", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "только показать неприменённые миграции")
	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Управление администраторами",
	}

	var email, password, displayName string
	create := &cobra.Command{
		Use:   "create",
		Short: "Создать администратора",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := userAdmin(cmd).CreateAdmin(cmd.Context(), email, password, displayName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "администратор создан: %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "email администратора")
	create.Flags().StringVar(&password, "password", "", "пароль")
	create.Flags().StringVar(&displayName, "name", "", "отображаемое имя")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	var promoteEmail string
	promote := &cobra.Command{
		Use:   "promote",
		Short: "Выдать роль admin существующему пользователю",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := userAdmin(cmd).PromoteByEmail(cmd.Context(), promoteEmail)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "роль admin выдана: %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	promote.Flags().StringVar(&promoteEmail, "email", "", "email пользователя")
	_ = promote.MarkFlagRequired("email")

	cmd.AddCommand(create, promote)
	return cmd
}

func maintenanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Режим обслуживания",
	}

	var message string
	on := &cobra.Command{
		Use:   "on",
		Short: "Включить режим обслуживания",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setMaintenance(cmd, true, message)
		},
	}
	on.Flags().StringVar(&message, "message", "", "текст баннера для пользователей")

	off := &cobra.Command{
		Use:   "off",
		Short: "Выключить режим обслуживания",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setMaintenance(cmd, false, "")
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Показать текущее состояние",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := persistence.NewMaintenanceRepositoryAdapter(conn)
			mode, err := maintenance.NewGetMaintenanceUseCase(repo, nil, 0).Execute(cmd.Context())
			if err != nil {
				return err
			}
			printMaintenance(cmd, mode.IsEnabled, mode.Message)
			return nil
		},
	}

	cmd.AddCommand(on, off, status)
	return cmd
}

func setMaintenance(cmd *cobra.Command, enabled bool, message string) error {
	repo := persistence.NewMaintenanceRepositoryAdapter(conn)
	mode, err := maintenance.NewSetMaintenanceUseCase(repo, nil).Execute(cmd.Context(), enabled, message, nil)
	if err != nil {
		return err
	}
	printMaintenance(cmd, mode.IsEnabled, mode.Message)
	fmt.Fprintf(cmd.OutOrStdout(), "серверы увидят изменение в течение %s\n", cfg.MaintenanceCacheTTL)
	return nil
}

func printMaintenance(cmd *cobra.Command, enabled bool, message string) {
	state := "выключен"
	if enabled {
		state = "включён"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "режим обслуживания %s", state)
	if message != "" {
		fmt.Fprintf(cmd.OutOrStdout(), ": %s", message)
	}
	fmt.Fprintln(cmd.OutOrStdout())
}

func userAdmin(cmd *cobra.Command) *service.UserAdminService {
	return service.NewUserAdminService(repository.NewUserRepository(conn), service.NewCacheService(cmd.Context()))
}
