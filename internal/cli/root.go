// Package cli wires the reporting core to a cobra command surface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepanpomazov/resource-management/internal/bitrix"
	"github.com/stepanpomazov/resource-management/internal/credential"
	"github.com/stepanpomazov/resource-management/internal/model"
	"github.com/stepanpomazov/resource-management/internal/report"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "resreport",
	Short: "Plan-vs-fact and resource allocation reports",
	Long: `resreport pulls tasks from a project-management REST API and prints
actual-vs-planned effort reports: a flat plan-vs-fact ledger grouped by
project and user, and a depth-bounded per-project task hierarchy.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "",
		"Config file (default ~/.config/resreport/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false,
		"Enable debug logging")

	rootCmd.AddCommand(planFactCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(authCmd)
}

// newService loads configuration and builds the report service.
func newService() (*report.Service, error) {
	path := cfgPath
	if path == "" {
		path = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	webhook := credential.WebhookURL(cfg.API.WebhookURL)
	if webhook == "" {
		return nil, fmt.Errorf(
			"no webhook URL configured: run %q or set api.webhook_url in %s",
			"resreport auth <webhook-url>", path)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	client := bitrix.NewClient(bitrix.Config{
		WebhookURL:      webhook,
		CacheTTL:        time.Duration(cfg.API.CacheTTLSec) * time.Second,
		MinCallInterval: time.Duration(cfg.API.MinCallIntervalMS) * time.Millisecond,
		QuotaBackoff:    time.Duration(cfg.API.QuotaBackoffSec) * time.Second,
		Logger:          logger,
	})
	queries := bitrix.NewQueries(client, cfg.API.PageSize, cfg.API.MaxTaskRecords, logger)
	return report.NewService(queries, cfg.Report, logger), nil
}
