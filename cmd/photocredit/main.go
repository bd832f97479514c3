// Command photocredit serves a photo blog with Schema.org image credits and
// inspects its credit data from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/photocredit"
	"github.com/eringen/photocredit/views"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool

	cfg    photocredit.SiteConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "photocredit",
	Short: "Photo blog engine with Schema.org image credits",
	Long: `photocredit publishes photo posts and attaches photographer and
Creative Commons license data to their images as Schema.org ImageObject
JSON-LD, image sitemap entries and Media RSS credits.

Configuration is read from a YAML file (--config) and PHOTOCREDIT_*
environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = photocredit.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger, err = photocredit.NewLogger(verbose || cfg.Debug)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the photocredit version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "photocredit %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "photocredit.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, jsonldCmd, scanCmd, settingsCmd, versionCmd)
}

// openApp opens the store and credit dependencies without serving HTTP.
func openApp() (*photocredit.App, error) {
	app := photocredit.New(cfg, views.New(cfg), photocredit.WithLogger(logger))
	if err := app.Open(); err != nil {
		return nil, err
	}
	return app, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
