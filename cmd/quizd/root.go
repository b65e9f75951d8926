package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "quizd",
	Short:         "Adaptive quiz platform server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN (overrides DB_DSN env var)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite|postgres (overrides DB_DRIVER env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

type runtime struct {
	cfg config.Config
	log *zap.Logger
	db  *sql.DB
}

func (rt *runtime) Close() {
	_ = rt.db.Close()
	_ = rt.log.Sync()
}

// setup loads config (flags over env), builds the logger and opens the
// database, which applies the schema.
func setup(cmd *cobra.Command) (*runtime, error) {
	cfg := config.FromEnv()
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBDSN = v
	}
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.DBDriver = v
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("db open failed: %w", err)
	}
	return &runtime{cfg: cfg, log: log, db: dbh}, nil
}
