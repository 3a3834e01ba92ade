package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arnavshah/shiftplan-api/pkg/config"
	"github.com/arnavshah/shiftplan-api/pkg/database"
	"github.com/arnavshah/shiftplan-api/pkg/logger"
	"github.com/arnavshah/shiftplan-api/pkg/planner"
	"github.com/arnavshah/shiftplan-api/pkg/store"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "shiftctl",
	Short:         "Shift planner maintenance commands",
	Long:          "shiftctl issues API keys and runs proposal jobs against the configured database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	config.LoadDotEnv()
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err = logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	return nil
}

// openPlanner loads config and connects a planner to the database
func openPlanner() (*planner.Planner, *gorm.DB, error) {
	if err := loadConfig(); err != nil {
		return nil, nil, err
	}
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return planner.New(store.New(db), log, nil), db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
