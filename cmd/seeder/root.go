package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/app"
	"github.com/address-data-service/internal/config"
	"github.com/address-data-service/internal/pkg/logger"
)

var (
	cfg  *config.Config
	log  *zap.Logger
	deps *app.App
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Address data seeding from OpenStreetMap",
	Long:  "Collects real city addresses from the Overpass API and stores them as CSV documents grouped by country and state.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		l, err := logger.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l

		d, err := app.New(cfg, log, nil)
		if err != nil {
			return fmt.Errorf("init dependencies: %w", err)
		}
		deps = d

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if deps != nil {
			deps.Close()
		}
		if log != nil {
			_ = log.Sync()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
