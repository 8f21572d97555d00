package sync

import (
	"time"

	"zone-mirror/core/cloudflare"

	"gorm.io/gorm"
)

// The upserts below are single atomic upsert-and-return-id operations: the
// generated id is recovered from the statement itself (MySQL LAST_INSERT_ID
// redirection, SQLite RETURNING), never via a separate SELECT on the row.
// Splitting them would reintroduce a race if units are ever run concurrently.
// All of them must run inside a transaction so the id readback stays on the
// same connection.

func isSQLite(tx *gorm.DB) bool {
	return tx.Dialector.Name() == "sqlite"
}

func lastInsertID(tx *gorm.DB) (uint, error) {
	var id uint
	err := tx.Raw("SELECT LAST_INSERT_ID()").Scan(&id).Error
	return id, err
}

// upsertAccount inserts or refreshes an account row keyed by its provider id
// and returns the local id.
func upsertAccount(tx *gorm.DB, cfAccountID, name string) (uint, error) {
	now := time.Now()

	if isSQLite(tx) {
		var id uint
		err := tx.Raw(`
			INSERT INTO cloudflare_accounts (cf_account_id, name, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (cf_account_id) DO UPDATE SET
				name = excluded.name,
				updated_at = excluded.updated_at
			RETURNING id`,
			cfAccountID, name, now, now,
		).Scan(&id).Error
		return id, err
	}

	err := tx.Exec(`
		INSERT INTO cloudflare_accounts (cf_account_id, name, created_at, updated_at)
		VALUES (?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			updated_at = NOW(),
			id = LAST_INSERT_ID(id)`,
		cfAccountID, name,
	).Error
	if err != nil {
		return 0, err
	}
	return lastInsertID(tx)
}

// upsertZone inserts or refreshes a zone row keyed by its provider id and
// returns the local id.
func upsertZone(tx *gorm.DB, accountID uint, zone cloudflare.Zone) (uint, error) {
	now := time.Now()

	if isSQLite(tx) {
		var id uint
		err := tx.Raw(`
			INSERT INTO cloudflare_zones
				(account_id, cf_zone_id, name, status, paused, zone_type, plan_name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (cf_zone_id) DO UPDATE SET
				account_id = excluded.account_id,
				name = excluded.name,
				status = excluded.status,
				paused = excluded.paused,
				zone_type = excluded.zone_type,
				plan_name = excluded.plan_name,
				updated_at = excluded.updated_at
			RETURNING id`,
			accountID, zone.ID, zone.Name, zone.Status, zone.Paused, zone.Type, zone.Plan.Name, now, now,
		).Scan(&id).Error
		return id, err
	}

	err := tx.Exec(`
		INSERT INTO cloudflare_zones
			(account_id, cf_zone_id, name, status, paused, zone_type, plan_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			account_id = VALUES(account_id),
			name = VALUES(name),
			status = VALUES(status),
			paused = VALUES(paused),
			zone_type = VALUES(zone_type),
			plan_name = VALUES(plan_name),
			updated_at = NOW(),
			id = LAST_INSERT_ID(id)`,
		accountID, zone.ID, zone.Name, zone.Status, zone.Paused, zone.Type, zone.Plan.Name,
	).Error
	if err != nil {
		return 0, err
	}
	return lastInsertID(tx)
}

// upsertPool inserts or refreshes a pool row keyed by (lb_id, cf_pool_id) and
// returns the local id.
func upsertPool(tx *gorm.DB, lbID uint, pool *cloudflare.Pool) (uint, error) {
	now := time.Now()
	enabled := pool.Enabled == nil || *pool.Enabled
	minimumOrigins := pool.MinimumOrigins
	if minimumOrigins <= 0 {
		minimumOrigins = 1
	}
	steering := pool.OriginSteering.Policy
	if steering == "" {
		steering = "random"
	}
	notification := pool.NotifiesPoolEvents()

	if isSQLite(tx) {
		var id uint
		err := tx.Raw(`
			INSERT INTO cloudflare_lb_pools
				(lb_id, cf_pool_id, name, description, enabled, minimum_origins, monitor,
				 origin_steering_policy, notification_email, notification_enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (lb_id, cf_pool_id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				enabled = excluded.enabled,
				minimum_origins = excluded.minimum_origins,
				monitor = excluded.monitor,
				origin_steering_policy = excluded.origin_steering_policy,
				notification_email = excluded.notification_email,
				notification_enabled = excluded.notification_enabled,
				updated_at = excluded.updated_at
			RETURNING id`,
			lbID, pool.ID, pool.Name, pool.Description, enabled, minimumOrigins, pool.Monitor,
			steering, pool.NotificationEmail, notification, now, now,
		).Scan(&id).Error
		return id, err
	}

	err := tx.Exec(`
		INSERT INTO cloudflare_lb_pools
			(lb_id, cf_pool_id, name, description, enabled, minimum_origins, monitor,
			 origin_steering_policy, notification_email, notification_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			description = VALUES(description),
			enabled = VALUES(enabled),
			minimum_origins = VALUES(minimum_origins),
			monitor = VALUES(monitor),
			origin_steering_policy = VALUES(origin_steering_policy),
			notification_email = VALUES(notification_email),
			notification_enabled = VALUES(notification_enabled),
			updated_at = NOW(),
			id = LAST_INSERT_ID(id)`,
		lbID, pool.ID, pool.Name, pool.Description, enabled, minimumOrigins, pool.Monitor,
		steering, pool.NotificationEmail, notification,
	).Error
	if err != nil {
		return 0, err
	}
	return lastInsertID(tx)
}
