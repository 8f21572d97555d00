package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"zone-mirror/core/cloudflare"
	"zone-mirror/core/config"
	"zone-mirror/core/database"
	"zone-mirror/feature/mirror/models"
	"zone-mirror/feature/mirror/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// poolsCmd represents the pools command
var poolsCmd = &cobra.Command{
	Use:   "pools [zone-id]",
	Short: "Re-link load balancer pools and origins",
	Long: `Resolves the pool ids referenced by the mirrored load balancers against
the Cloudflare API and replaces the local pool and origin rows. Without an
argument every zone is processed; with a numeric zone id only that zone is.`,
	Args: cobra.MaximumNArgs(1),
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

		cfPath := cfg.Sync.CloudflareConfig
		if cloudflareConfigFlag != "" {
			cfPath = cloudflareConfigFlag
		}
		dbPath := cfg.Sync.MyDNSConfig
		if mydnsConfigFlag != "" {
			dbPath = mydnsConfigFlag
		}

		creds, _, err := config.LoadProviderConfig(cfPath)
		if err != nil {
			return fmt.Errorf("failed to load provider credentials: %w", err)
		}
		client := cloudflare.New(*creds, cfg.Cloudflare, logg)

		dbCfg, err := config.LoadDatabaseConfig(dbPath)
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}
		db, err := database.Connect(*dbCfg, logg)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		zoneIDs, err := targetZones(ctx, db, args)
		if err != nil {
			return err
		}

		engine := sync.NewEngine(db, logg)
		var pools, origins, errCount int
		for _, zoneID := range zoneIDs {
			p, o, e, err := engine.LinkZonePools(ctx, client, zoneID)
			if err != nil {
				logg.Error("Failed to link pools", zap.Uint("zone_id", zoneID), zap.Error(err))
				errCount++
				continue
			}
			pools += p
			origins += o
			errCount += e
		}

		fmt.Printf("Linked %d pool(s) and %d origin(s) across %d zone(s), %d error(s)\n",
			pools, origins, len(zoneIDs), errCount)
		if errCount > 0 {
			return fmt.Errorf("pool linking finished with %d error(s)", errCount)
		}
		return nil
	},
}

// targetZones resolves the zone argument to local zone ids; all zones when
// no argument is given.
func targetZones(ctx context.Context, db *gorm.DB, args []string) ([]uint, error) {
	if len(args) == 1 {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid zone id %q", args[0])
		}
		return []uint{uint(id)}, nil
	}

	var zones []models.Zone
	if err := db.WithContext(ctx).Order("id").Find(&zones).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(zones))
	for _, zone := range zones {
		ids = append(ids, zone.ID)
	}
	return ids, nil
}

func init() {
	RootCmd.AddCommand(poolsCmd)
}
