package cmd

import (
	"fmt"
	"os"

	"zone-mirror/core/config"
	"zone-mirror/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevelFlag  string
	logFormatFlag string

	cloudflareConfigFlag string
	mydnsConfigFlag      string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "zone-mirror",
	Short: "Cloudflare DNS Mirror Service",
	Long: `zone-mirror keeps a local relational mirror of Cloudflare accounts, zones,
DNS records, load balancers, pools and origins, so the DNS server can serve
geo/health-aware responses without calling the provider API on every query.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting.
		// Console format matches user expectations for a CLI tool, and the
		// debug level gives ISO8601 timestamps instead of epoch seconds.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// buildLogger loads the configured logger, honoring the root log flags when
// set.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	logCfg := cfg.Log
	if logLevelFlag != "" {
		logCfg.Level = logLevelFlag
	}
	if logFormatFlag != "" {
		logCfg.Format = logFormatFlag
	}
	return logger.New(&logCfg)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Override log format (json, console)")
	RootCmd.PersistentFlags().StringVar(&cloudflareConfigFlag, "cloudflare-config", "", "Path to the cloudflare.ini credentials file")
	RootCmd.PersistentFlags().StringVar(&mydnsConfigFlag, "mydns-config", "", "Path to the mydns.conf database file")
}
