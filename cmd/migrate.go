package cmd

import (
	"fmt"

	"zone-mirror/core/config"
	"zone-mirror/core/database"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long:  `Creates or upgrades the mirror tables in the configured MySQL database.`,
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

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Schema is up to date")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
