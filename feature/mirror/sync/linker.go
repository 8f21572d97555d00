package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"zone-mirror/core/cloudflare"
	"zone-mirror/core/utils"
	"zone-mirror/feature/mirror/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// linkAccountPools resolves the pool ids referenced by every load balancer of
// the account and mirrors pool + origin detail. Runs after the zones of the
// account have committed.
func (e *Engine) linkAccountPools(ctx context.Context, client *cloudflare.Client, cfAccountID string, accountDBID uint) (pools, origins, errors int) {
	var balancers []models.LoadBalancer
	err := e.db.
		Joins("JOIN cloudflare_zones z ON z.id = cloudflare_load_balancers.zone_id").
		Where("z.account_id = ?", accountDBID).
		Find(&balancers).Error
	if err != nil {
		e.logger.Error("Failed to load mirrored load balancers",
			zap.String("cf_account_id", cfAccountID),
			zap.Error(err),
		)
		return 0, 0, 1
	}
	return e.linkPools(ctx, client, cfAccountID, balancers)
}

// LinkZonePools runs the linking pass for a single mirrored zone, used by the
// standalone pools command.
func (e *Engine) LinkZonePools(ctx context.Context, client *cloudflare.Client, zoneDBID uint) (pools, origins, errors int, err error) {
	var zone models.Zone
	if err := e.db.First(&zone, zoneDBID).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("zone %d not found: %w", zoneDBID, err)
	}
	var account models.Account
	if err := e.db.First(&account, zone.AccountID).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("account for zone %d not found: %w", zoneDBID, err)
	}

	var balancers []models.LoadBalancer
	if err := e.db.Where("zone_id = ?", zoneDBID).Find(&balancers).Error; err != nil {
		return 0, 0, 0, err
	}

	pools, origins, errors = e.linkPools(ctx, client, account.CFAccountID, balancers)
	return pools, origins, errors, nil
}

// linkPools fetches each referenced pool id exactly once and, for every load
// balancer referencing it, upserts the pool row and fully replaces its
// origins. A pool fetch failure skips that id only.
func (e *Engine) linkPools(ctx context.Context, client *cloudflare.Client, cfAccountID string, balancers []models.LoadBalancer) (pools, origins, errors int) {
	if len(balancers) == 0 {
		return 0, 0, 0
	}

	// Union of referenced pool ids, and which local LBs reference each.
	referencing := make(map[string][]uint)
	for _, lb := range balancers {
		for _, poolID := range decodePoolList(lb.DefaultPools) {
			referencing[poolID] = append(referencing[poolID], lb.ID)
		}
	}
	if len(referencing) == 0 {
		return 0, 0, 0
	}

	poolIDs := make([]string, 0, len(referencing))
	for poolID := range referencing {
		poolIDs = append(poolIDs, poolID)
	}
	// Deterministic fetch order keeps reruns and logs comparable.
	sort.Strings(poolIDs)

	logg := e.logger.With(zap.String("cf_account_id", cfAccountID))
	logg.Info("Linking pools", zap.Int("unique_pools", len(poolIDs)))

	for _, cfPoolID := range poolIDs {
		if ctx.Err() != nil {
			return pools, origins, errors
		}

		pool, err := client.GetPool(ctx, cfAccountID, cfPoolID)
		if err != nil {
			logg.Error("Failed to fetch pool, skipping",
				zap.String("cf_pool_id", cfPoolID),
				zap.Error(err),
			)
			errors++
			continue
		}

		for _, lbID := range referencing[cfPoolID] {
			originCount, err := e.mirrorPool(lbID, pool)
			if err != nil {
				logg.Error("Failed to mirror pool",
					zap.String("cf_pool_id", cfPoolID),
					zap.Uint("lb_id", lbID),
					zap.Error(err),
				)
				errors++
				continue
			}
			pools++
			origins += originCount
		}
	}
	return pools, origins, errors
}

// mirrorPool upserts the pool row for one load balancer and replaces its
// origin rows, all inside one transaction.
func (e *Engine) mirrorPool(lbID uint, pool *cloudflare.Pool) (int, error) {
	var inserted int
	err := e.db.Transaction(func(tx *gorm.DB) error {
		poolDBID, err := upsertPool(tx, lbID, pool)
		if err != nil {
			return fmt.Errorf("upsert pool: %w", err)
		}

		if err := tx.Where("pool_id = ?", poolDBID).Delete(&models.Origin{}).Error; err != nil {
			return fmt.Errorf("delete origins: %w", err)
		}
		if len(pool.Origins) == 0 {
			return nil
		}

		rows := make([]models.Origin, 0, len(pool.Origins))
		for _, origin := range pool.Origins {
			enabled := origin.Enabled == nil || *origin.Enabled
			weight := origin.Weight
			if weight == 0 {
				weight = 1.0
			}
			var headerHost *string
			if host := origin.HostHeader(); host != "" {
				headerHost = &host
			}
			rows = append(rows, models.Origin{
				PoolID:     poolDBID,
				Name:       origin.Name,
				Address:    origin.Address,
				Enabled:    enabled,
				Weight:     weight,
				Port:       origin.Port,
				HeaderHost: headerHost,
			})
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert origins: %w", err)
		}
		inserted = len(rows)
		return nil
	})
	return inserted, err
}

// encodePoolList serializes the opaque pool id list for the default_pools
// column. Nil input is stored as NULL-ish empty to match the provider
// omitting the field.
func encodePoolList(poolIDs []string) string {
	if poolIDs == nil {
		return ""
	}
	encoded, err := json.Marshal(poolIDs)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// decodePoolList parses a default_pools column value. Malformed data (not a
// JSON list, or not parseable) means "no pools for this load balancer",
// never a fatal error.
func decodePoolList(value string) []string {
	if value == "" {
		return nil
	}
	var decoded []any
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return nil
	}
	var poolIDs []string
	for _, entry := range decoded {
		if id := utils.ToString(entry); id != "" {
			poolIDs = append(poolIDs, id)
		}
	}
	return poolIDs
}
