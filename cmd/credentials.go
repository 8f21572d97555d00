package cmd

import (
	"fmt"
	"strings"

	"zone-mirror/core/cloudflare"
	"zone-mirror/core/config"
	"zone-mirror/core/database"
	"zone-mirror/core/secrets"
	"zone-mirror/feature/mirror/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	credUserIDFlag    uint
	credEmailFlag     string
	credAPIKeyFlag    string
	credAccountIDFlag string
	credDomainFlag    string
	credAPIURLFlag    string
	credDisabledFlag  bool
	credNoAutoFlag    bool
)

// credentialsCmd represents the credentials command
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage per-user provider credentials",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// credentialsListCmd represents the credentials list command
var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored credentials and their sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := credentialsSetup()
		if err != nil {
			return err
		}

		var rows []models.Credential
		if err := db.Order("id").Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to load credentials: %w", err)
		}
		if len(rows) == 0 {
			fmt.Println("No credentials stored")
			return nil
		}

		fmt.Printf("%-4s %-6s %-28s %-34s %-24s %-8s %-8s %s\n",
			"ID", "USER", "EMAIL", "ACCOUNT", "DOMAIN", "ENABLED", "AUTO", "LAST SYNC")
		for _, cred := range rows {
			lastSync := "-"
			if cred.LastSyncAt != nil {
				lastSync = fmt.Sprintf("%s (%s)", cred.LastSyncAt.Format("2006-01-02 15:04"), cred.LastSyncStatus)
			}
			domain := cred.CFDomain
			if domain == "" {
				domain = "*"
			}
			fmt.Printf("%-4d %-6d %-28s %-34s %-24s %-8v %-8v %s\n",
				cred.ID, cred.UserID, cred.CFEmail, cred.CFAccountID, domain,
				cred.Enabled, cred.AutoSync, lastSync)
			if cred.LastSyncError != "" {
				fmt.Printf("     last error: %s\n", cred.LastSyncError)
			}
		}
		return nil
	},
}

// credentialsAddCmd represents the credentials add command
var credentialsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a new credential with an encrypted API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if credEmailFlag == "" || credAPIKeyFlag == "" || credAccountIDFlag == "" {
			return fmt.Errorf("--email, --api-key and --account-id are required")
		}

		cfg, db, err := credentialsSetup()
		if err != nil {
			return err
		}
		if cfg.Sync.EncryptionKey == "" {
			return fmt.Errorf("no encryption key configured")
		}
		cipher, err := secrets.NewCipher(cfg.Sync.EncryptionKey)
		if err != nil {
			return fmt.Errorf("invalid encryption key: %w", err)
		}

		sealed, err := cipher.Seal(credAPIKeyFlag)
		if err != nil {
			return fmt.Errorf("failed to encrypt api key: %w", err)
		}

		apiURL := strings.TrimRight(credAPIURLFlag, "/")
		if apiURL == "" {
			apiURL = cloudflare.DefaultAPIBase
		}

		cred := models.Credential{
			UserID:      credUserIDFlag,
			CFEmail:     credEmailFlag,
			CFAPIKey:    sealed,
			CFAccountID: credAccountIDFlag,
			CFDomain:    credDomainFlag,
			CFAPIURL:    apiURL,
			Enabled:     !credDisabledFlag,
			AutoSync:    !credNoAutoFlag,
		}
		if err := db.Create(&cred).Error; err != nil {
			return fmt.Errorf("failed to store credential: %w", err)
		}

		fmt.Printf("Stored credential %d for user %d\n", cred.ID, cred.UserID)
		return nil
	},
}

// credentialsSetup loads config, logger and the database connection shared by
// the credentials subcommands.
func credentialsSetup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := buildLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	dbPath := cfg.Sync.MyDNSConfig
	if mydnsConfigFlag != "" {
		dbPath = mydnsConfigFlag
	}
	dbCfg, err := config.LoadDatabaseConfig(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load database config: %w", err)
	}
	db, err := database.Connect(*dbCfg, logg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	return cfg, db, nil
}

func init() {
	credentialsAddCmd.Flags().UintVar(&credUserIDFlag, "user-id", 0, "Owning user id")
	credentialsAddCmd.Flags().StringVar(&credEmailFlag, "email", "", "Cloudflare account email")
	credentialsAddCmd.Flags().StringVar(&credAPIKeyFlag, "api-key", "", "Cloudflare API key (stored encrypted)")
	credentialsAddCmd.Flags().StringVar(&credAccountIDFlag, "account-id", "", "Cloudflare account id")
	credentialsAddCmd.Flags().StringVar(&credDomainFlag, "domain", "", "Restrict the credential to one zone name")
	credentialsAddCmd.Flags().StringVar(&credAPIURLFlag, "api-url", "", "API base URL override")
	credentialsAddCmd.Flags().BoolVar(&credDisabledFlag, "disabled", false, "Store the credential disabled")
	credentialsAddCmd.Flags().BoolVar(&credNoAutoFlag, "no-auto-sync", false, "Exclude the credential from scheduled runs")

	credentialsCmd.AddCommand(credentialsListCmd)
	credentialsCmd.AddCommand(credentialsAddCmd)
	RootCmd.AddCommand(credentialsCmd)
}
