// Package cli wires configuration, storage and transports into the
// tablebook command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/table-reservations/internal/config"
	"github.com/Leganyst/table-reservations/internal/db"
	"github.com/Leganyst/table-reservations/internal/lock"
	"github.com/Leganyst/table-reservations/internal/logger"
	"github.com/Leganyst/table-reservations/internal/model"
	"github.com/Leganyst/table-reservations/internal/service"
)

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tablebook",
		Short:         "Restaurant table reservations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewWorkerCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewAvailabilityCmd())
	cmd.AddCommand(NewHistoryCmd())
	return cmd
}

func Execute() {
	if err := NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is what every subcommand needs once config is loaded.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func bootstrap(migrate bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if migrate {
		if err := model.AutoMigrate(gormDB); err != nil {
			log.Sync()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return &app{cfg: cfg, log: log, db: gormDB}, nil
}

func (a *app) reservations() *service.ReservationService {
	guard := lock.ForDriver(a.cfg.DB.Driver, a.cfg.Scheduler.LockTimeout())
	return service.NewReservationService(a.db, guard, a.cfg.Scheduler, a.log)
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.log.Sync()
}
