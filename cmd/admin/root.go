package main

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/noah-isme/coloringbook-api/internal/config"
	"github.com/noah-isme/coloringbook-api/internal/database"
	"github.com/noah-isme/coloringbook-api/internal/observability"
	"github.com/noah-isme/coloringbook-api/internal/repository"
	"github.com/noah-isme/coloringbook-api/internal/service"
)

// adminEnv is opened once per invocation, before the selected command runs.
type adminEnv struct {
	cfg     config.Config
	logger  zerolog.Logger
	db      *gorm.DB
	logFile io.Closer
}

func newRootCmd() *cobra.Command {
	env := &adminEnv{}

	root := &cobra.Command{
		Use:          "coloringbook-admin",
		Short:        "Operator tooling for the coloring book survey database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.open(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return env.close()
		},
	}

	root.AddCommand(newMigrateCmd(env))
	root.AddCommand(newSeedCmd(env))
	root.AddCommand(newExportCmd(env))
	return root
}

func (e *adminEnv) open(logOut io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, logFile := observability.NewLogger(cfg.Log, cfg.AppName+" admin", logOut)

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logFile.Close()
		return err
	}

	e.cfg = cfg
	e.logger = logger
	e.db = db
	e.logFile = logFile
	return nil
}

func (e *adminEnv) close() error {
	if e.logFile != nil {
		defer e.logFile.Close()
	}
	if e.db == nil {
		return nil
	}
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (e *adminEnv) exportService() service.ExportService {
	return service.NewExportService(
		repository.NewSurveyRepository(e.db),
		repository.NewPageRepository(e.db),
		repository.NewActionRepository(e.db),
		repository.NewFillRepository(e.db),
		e.logger,
	)
}

func (e *adminEnv) seedService() service.SeedService {
	return service.NewLocalSeedService(
		repository.NewCatalogRepository(e.db),
		validator.New(validator.WithRequiredStructEnabled()),
		e.logger,
	)
}
