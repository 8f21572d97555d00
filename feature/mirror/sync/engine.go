package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zone-mirror/core/cloudflare"
	"zone-mirror/feature/mirror/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// insertBatchSize bounds the row count per bulk INSERT statement.
const insertBatchSize = 100

// Unit is one independent sync task produced by the credential aggregator.
// Units never share state; a failure in one cannot affect another.
type Unit struct {
	// Label identifies the unit in logs and summaries.
	Label string
	// Client is the provider client built from this unit's credentials.
	Client *cloudflare.Client
	// AccountIDs are the provider accounts to sync.
	AccountIDs []string
	// Domain, when set, restricts the sync to the zone with that name.
	Domain string
	// CredentialID links back to the credential row for status updates.
	// Nil for the global unit, whose status is not persisted.
	CredentialID *uint
	// UserID is the owning user for per-user units.
	UserID *uint
}

// Engine converges the local tables to the provider state, one unit at a
// time. It owns the database connection for the duration of a run and writes
// one transaction at a time, so units are processed strictly sequentially.
type Engine struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(db *gorm.DB, logg *zap.Logger) *Engine {
	return &Engine{db: db, logger: logg}
}

// Run processes every unit in order and returns the aggregated summary.
// Unit-level failures are contained: they mark that unit failed and the run
// continues. Cancellation is honored at zone boundaries only, so an
// interrupted run never leaves a half-written zone committed.
func (e *Engine) Run(ctx context.Context, units []Unit) *models.RunSummary {
	summary := &models.RunSummary{StartedAt: time.Now()}

	for _, unit := range units {
		result := e.syncUnit(ctx, unit)

		if unit.CredentialID != nil {
			updateCredentialStatus(e.db, e.logger, *unit.CredentialID, result.Status, result.Error)
		}

		e.logger.Info("Unit finished",
			zap.String("unit", unit.Label),
			zap.String("status", result.Status),
			zap.Int("zones", result.Zones),
			zap.Int("records", result.Records),
			zap.Int("load_balancers", result.LoadBalancers),
			zap.Int("pools", result.Pools),
			zap.Int("origins", result.Origins),
			zap.Int("errors", result.Errors),
		)
		summary.Add(result)

		if ctx.Err() != nil {
			e.logger.Warn("Run interrupted, remaining units skipped", zap.String("unit", unit.Label))
			break
		}
	}

	summary.Finish()
	e.logger.Info("Sync run finished",
		zap.String("status", summary.Status),
		zap.Int("zones", summary.Zones),
		zap.Int("records", summary.Records),
		zap.Int("load_balancers", summary.LoadBalancers),
		zap.Int("pools", summary.Pools),
		zap.Int("origins", summary.Origins),
		zap.Int("errors", summary.Errors),
	)
	return summary
}

// syncUnit syncs all accounts of one unit. An account whose zone listing
// fails is skipped with one counted error; the unit is marked failed only
// when no account could be processed at all.
func (e *Engine) syncUnit(ctx context.Context, unit Unit) models.UnitResult {
	result := models.UnitResult{
		Label:        unit.Label,
		CredentialID: unit.CredentialID,
		Status:       models.SyncStatusSuccess,
	}

	failedAccounts := 0
	var lastErr error
	for _, cfAccountID := range unit.AccountIDs {
		if ctx.Err() != nil {
			result.Status = models.SyncStatusFailed
			result.Error = ctx.Err().Error()
			return result
		}
		if err := e.syncAccount(ctx, unit, cfAccountID, &result); err != nil {
			failedAccounts++
			lastErr = err
		}
	}

	switch {
	case len(unit.AccountIDs) > 0 && failedAccounts == len(unit.AccountIDs):
		result.Status = models.SyncStatusFailed
		result.Error = lastErr.Error()
	case result.Errors > 0:
		result.Status = models.SyncStatusPartial
	}
	return result
}

// syncAccount mirrors one provider account: the account row, then every zone
// in provider list order, then the pool linking pass. A zone failure rolls
// back that zone only and processing continues with the next one.
func (e *Engine) syncAccount(ctx context.Context, unit Unit, cfAccountID string, result *models.UnitResult) error {
	logg := e.logger.With(
		zap.String("unit", unit.Label),
		zap.String("cf_account_id", cfAccountID),
	)
	logg.Info("Syncing account")

	// Create the account row before anything else so children always have a
	// parent. The placeholder name is refreshed from the zone payload below.
	accountDBID, err := e.upsertAccountTx(cfAccountID, fallbackAccountName(cfAccountID))
	if err != nil {
		logg.Error("Failed to upsert account", zap.Error(err))
		result.Errors++
		return err
	}

	zones, err := unit.Client.ListZones(ctx, cfAccountID)
	if err != nil {
		logg.Error("Failed to list zones, skipping account", zap.Error(err))
		result.Errors++
		return err
	}
	if len(zones) == 0 {
		logg.Info("No zones returned for account")
		return nil
	}

	// The zone payload carries the account's display name.
	for _, zone := range zones {
		if zone.Account.ID == cfAccountID && zone.Account.Name != "" {
			if _, err := e.upsertAccountTx(cfAccountID, zone.Account.Name); err != nil {
				logg.Warn("Failed to refresh account name", zap.Error(err))
			}
			break
		}
	}

	for _, zone := range zones {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if unit.Domain != "" && zone.Name != unit.Domain {
			continue
		}
		if zone.ID == "" {
			logg.Warn("Skipping zone without id", zap.String("zone_name", zone.Name))
			result.Errors++
			continue
		}

		recordCount, lbCount, err := e.syncZone(ctx, unit.Client, accountDBID, zone)
		if err != nil {
			logg.Error("Failed to sync zone",
				zap.String("cf_zone_id", zone.ID),
				zap.String("zone_name", zone.Name),
				zap.Error(err),
			)
			result.Errors++
			continue
		}

		result.Zones++
		result.Records += recordCount
		result.LoadBalancers += lbCount
		logg.Info("Synced zone",
			zap.String("cf_zone_id", zone.ID),
			zap.String("zone_name", zone.Name),
			zap.Int("records", recordCount),
			zap.Int("load_balancers", lbCount),
		)
	}

	// Second pass: resolve the pool ids referenced by the load balancers
	// persisted above.
	pools, origins, poolErrors := e.linkAccountPools(ctx, unit.Client, cfAccountID, accountDBID)
	result.Pools += pools
	result.Origins += origins
	result.Errors += poolErrors

	return nil
}

// syncZone converges one zone inside a single transaction:
// upsert the zone row, replace its records, replace its load balancers, mark
// it synced, commit. Any error rolls the whole zone back.
//
// Provider fetches happen before the transaction opens so a slow or failing
// API call never holds row locks.
func (e *Engine) syncZone(ctx context.Context, client *cloudflare.Client, accountDBID uint, zone cloudflare.Zone) (int, int, error) {
	records, err := client.ListRecords(ctx, zone.ID)
	if err != nil {
		return 0, 0, err
	}
	// Soft failure inside: a zone without the load balancing product simply
	// yields an empty list.
	balancers := client.ListLoadBalancers(ctx, zone.ID)

	err = e.db.Transaction(func(tx *gorm.DB) error {
		zoneDBID, err := upsertZone(tx, accountDBID, zone)
		if err != nil {
			return fmt.Errorf("upsert zone: %w", err)
		}
		if err := replaceRecords(tx, zoneDBID, records); err != nil {
			return fmt.Errorf("replace records: %w", err)
		}
		if err := replaceLoadBalancers(tx, zoneDBID, balancers); err != nil {
			return fmt.Errorf("replace load balancers: %w", err)
		}

		now := time.Now()
		if err := tx.Model(&models.Zone{}).Where("id = ?", zoneDBID).
			Updates(map[string]any{"last_synced": now, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("mark synced: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return len(records), len(balancers), nil
}

// upsertAccountTx runs the account upsert in its own short transaction, since
// the generated-id readback requires connection affinity.
func (e *Engine) upsertAccountTx(cfAccountID, name string) (uint, error) {
	var id uint
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = upsertAccount(tx, cfAccountID, name)
		return err
	})
	return id, err
}

// replaceRecords deletes every record row of the zone and bulk-inserts the
// freshly fetched set. An empty provider response is valid and leaves the
// zone with zero records.
func replaceRecords(tx *gorm.DB, zoneDBID uint, records []cloudflare.Record) error {
	if err := tx.Where("zone_id = ?", zoneDBID).Delete(&models.Record{}).Error; err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	rows := make([]models.Record, 0, len(records))
	for _, record := range records {
		rows = append(rows, models.Record{
			ZoneID:     zoneDBID,
			CFRecordID: record.ID,
			RecordType: record.Type,
			Name:       record.Name,
			Content:    record.Content,
			TTL:        record.TTL,
			Proxied:    record.Proxied,
			Priority:   record.Priority,
			Comment:    record.Comment,
			Tags:       strings.Join(record.Tags, ","),
			Data:       string(record.Raw),
			ModifiedOn: parseTimestamp(record.ModifiedOn),
		})
	}
	return tx.CreateInBatches(rows, insertBatchSize).Error
}

// replaceLoadBalancers deletes every load balancer row of the zone and
// bulk-inserts the freshly fetched set.
func replaceLoadBalancers(tx *gorm.DB, zoneDBID uint, balancers []cloudflare.LoadBalancer) error {
	if err := tx.Where("zone_id = ?", zoneDBID).Delete(&models.LoadBalancer{}).Error; err != nil {
		return err
	}
	if len(balancers) == 0 {
		return nil
	}

	rows := make([]models.LoadBalancer, 0, len(balancers))
	for _, lb := range balancers {
		rows = append(rows, models.LoadBalancer{
			ZoneID:         zoneDBID,
			CFLBID:         lb.ID,
			Name:           lb.Name,
			Proxied:        lb.Proxied,
			Enabled:        lb.Enabled,
			FallbackPool:   lb.FallbackPool,
			DefaultPools:   encodePoolList(lb.DefaultPools),
			SteeringPolicy: lb.SteeringPolicy,
			Data:           string(lb.Raw),
		})
	}
	return tx.CreateInBatches(rows, insertBatchSize).Error
}

// updateCredentialStatus persists the sync outcome on the credential row.
// Status update failures are logged, never propagated; losing a status column
// update is not worth failing a unit over.
func updateCredentialStatus(db *gorm.DB, logg *zap.Logger, credentialID uint, status, errMsg string) {
	now := time.Now()
	err := db.Model(&models.Credential{}).Where("id = ?", credentialID).
		Updates(map[string]any{
			"last_sync_at":     now,
			"last_sync_status": status,
			"last_sync_error":  errMsg,
		}).Error
	if err != nil {
		logg.Error("Failed to update credential sync status",
			zap.Uint("credential_id", credentialID),
			zap.Error(err),
		)
	}
}

// parseTimestamp parses a provider RFC3339 timestamp; nil when absent or
// malformed, matching a nullable column.
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &ts
}

func fallbackAccountName(cfAccountID string) string {
	if len(cfAccountID) > 8 {
		return "Account " + cfAccountID[:8]
	}
	return "Account " + cfAccountID
}
