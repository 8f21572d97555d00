package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zone-mirror/core/config"
	"zone-mirror/core/database"
	"zone-mirror/core/secrets"
	"zone-mirror/feature/mirror/models"
	"zone-mirror/feature/mirror/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	accountsFlag   string
	skipGlobalFlag bool
	skipUsersFlag  bool
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full reconciliation pass",
	Long: `Fetches zones, DNS records, load balancers, pools and origins from the
Cloudflare API for every configured credential and replaces the local mirror
tables with the result. Exits non-zero if any zone or credential failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := buildLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		cfPath := cfg.Sync.CloudflareConfig
		if cloudflareConfigFlag != "" {
			cfPath = cloudflareConfigFlag
		}
		dbPath := cfg.Sync.MyDNSConfig
		if mydnsConfigFlag != "" {
			dbPath = mydnsConfigFlag
		}

		dbCfg, err := config.LoadDatabaseConfig(dbPath)
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}

		db, err := database.Connect(*dbCfg, logg)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}

		var cipher *secrets.Cipher
		if cfg.Sync.EncryptionKey != "" {
			cipher, err = secrets.NewCipher(cfg.Sync.EncryptionKey)
			if err != nil {
				return fmt.Errorf("invalid encryption key: %w", err)
			}
		}

		// Cancellation is honored at zone boundaries, so an interrupt
		// never commits a half-written zone.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var global *sync.GlobalCredential
		if !skipGlobalFlag {
			creds, accountIDs, err := config.LoadProviderConfig(cfPath)
			if err != nil {
				if skipUsersFlag {
					return fmt.Errorf("failed to load provider credentials: %w", err)
				}
				logg.Warn("Failed to load global credentials, syncing user credentials only", zap.Error(err))
			} else {
				if accountsFlag != "" {
					accountIDs = config.ParseAccountList(accountsFlag)
				}
				global = &sync.GlobalCredential{Creds: *creds, AccountIDs: accountIDs}
			}
		}

		agg := sync.NewAggregator(db, cipher, cfg.Cloudflare, logg)
		units, err := agg.Units(global, !skipUsersFlag)
		if err != nil {
			return err
		}
		if len(units) == 0 {
			return fmt.Errorf("no credentials to sync")
		}

		engine := sync.NewEngine(db, logg)
		summary := engine.Run(ctx, units)

		printSummary(summary)
		if summary.Errors > 0 {
			return fmt.Errorf("sync finished with %d error(s)", summary.Errors)
		}
		return nil
	},
}

func printSummary(summary *models.RunSummary) {
	fmt.Println("\n--- Sync Summary ---")
	fmt.Printf("Status:          %s\n", summary.Status)
	fmt.Printf("Duration:        %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	fmt.Printf("Zones:           %d\n", summary.Zones)
	fmt.Printf("Records:         %d\n", summary.Records)
	fmt.Printf("Load Balancers:  %d\n", summary.LoadBalancers)
	fmt.Printf("Pools:           %d\n", summary.Pools)
	fmt.Printf("Origins:         %d\n", summary.Origins)
	fmt.Printf("Errors:          %d\n", summary.Errors)
	fmt.Println("--------------------")
	for _, unit := range summary.Units {
		line := fmt.Sprintf("%-28s %s", unit.Label, unit.Status)
		if unit.Error != "" {
			line += " (" + unit.Error + ")"
		}
		fmt.Println(line)
	}
}

func init() {
	syncCmd.Flags().StringVar(&accountsFlag, "accounts", "", "Comma separated account id override for the global credentials")
	syncCmd.Flags().BoolVar(&skipGlobalFlag, "skip-global", false, "Skip the global credentials from cloudflare.ini")
	syncCmd.Flags().BoolVar(&skipUsersFlag, "skip-users", false, "Skip the per-user credentials from the database")
	RootCmd.AddCommand(syncCmd)
}
