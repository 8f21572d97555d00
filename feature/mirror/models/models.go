package models

import "time"

// Credential sync statuses persisted in last_sync_status.
const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// Account mirrors a provider account. Created on first sight, name refreshed
// on every sync, never deleted by the engine.
type Account struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	CFAccountID string    `gorm:"column:cf_account_id;uniqueIndex" json:"cf_account_id"`
	Name        string    `gorm:"column:name" json:"name"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Account) TableName() string {
	return "cloudflare_accounts"
}

// Zone mirrors a provider DNS zone. Upserted every run; absence from a later
// provider response does not delete the row.
type Zone struct {
	ID         uint       `gorm:"column:id;primaryKey" json:"id"`
	AccountID  uint       `gorm:"column:account_id" json:"account_id"`
	CFZoneID   string     `gorm:"column:cf_zone_id;uniqueIndex" json:"cf_zone_id"`
	Name       string     `gorm:"column:name" json:"name"`
	Status     string     `gorm:"column:status" json:"status"`
	Paused     bool       `gorm:"column:paused" json:"paused"`
	ZoneType   string     `gorm:"column:zone_type" json:"zone_type"`
	PlanName   string     `gorm:"column:plan_name" json:"plan_name"`
	LastSynced *time.Time `gorm:"column:last_synced" json:"last_synced"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Zone) TableName() string {
	return "cloudflare_zones"
}

// Record mirrors a provider DNS record. The full record set of a zone is
// replaced inside one transaction on every run, so stale rows never survive a
// provider-side deletion. Data carries the verbatim provider payload.
type Record struct {
	ID         uint       `gorm:"column:id;primaryKey" json:"id"`
	ZoneID     uint       `gorm:"column:zone_id;index" json:"zone_id"`
	CFRecordID string     `gorm:"column:cf_record_id" json:"cf_record_id"`
	RecordType string     `gorm:"column:record_type" json:"record_type"`
	Name       string     `gorm:"column:name" json:"name"`
	Content    string     `gorm:"column:content" json:"content"`
	TTL        int        `gorm:"column:ttl" json:"ttl"`
	Proxied    *bool      `gorm:"column:proxied" json:"proxied"`
	Priority   *int       `gorm:"column:priority" json:"priority"`
	Comment    string     `gorm:"column:comment" json:"comment"`
	Tags       string     `gorm:"column:tags" json:"tags"`
	Data       string     `gorm:"column:data" json:"-"`
	ModifiedOn *time.Time `gorm:"column:modified_on" json:"modified_on"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Record) TableName() string {
	return "cloudflare_records"
}

// LoadBalancer mirrors a provider load balancer. Replaced wholesale per zone
// like records. DefaultPools is a JSON array of opaque provider pool ids,
// resolved by the pool linking pass rather than stored as foreign keys.
type LoadBalancer struct {
	ID             uint      `gorm:"column:id;primaryKey" json:"id"`
	ZoneID         uint      `gorm:"column:zone_id;index" json:"zone_id"`
	CFLBID         string    `gorm:"column:cf_lb_id" json:"cf_lb_id"`
	Name           string    `gorm:"column:name" json:"name"`
	Proxied        *bool     `gorm:"column:proxied" json:"proxied"`
	Enabled        *bool     `gorm:"column:enabled" json:"enabled"`
	FallbackPool   string    `gorm:"column:fallback_pool" json:"fallback_pool"`
	DefaultPools   string    `gorm:"column:default_pools" json:"default_pools"`
	SteeringPolicy string    `gorm:"column:steering_policy" json:"steering_policy"`
	Data           string    `gorm:"column:data" json:"-"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (LoadBalancer) TableName() string {
	return "cloudflare_load_balancers"
}

// Pool mirrors a provider load balancer pool, scoped to the load balancer
// that references it. Upserted keyed (lb_id, cf_pool_id), not replaced.
type Pool struct {
	ID                   uint      `gorm:"column:id;primaryKey" json:"id"`
	LBID                 uint      `gorm:"column:lb_id;uniqueIndex:uq_pools_lb_pool" json:"lb_id"`
	CFPoolID             string    `gorm:"column:cf_pool_id;uniqueIndex:uq_pools_lb_pool" json:"cf_pool_id"`
	Name                 string    `gorm:"column:name" json:"name"`
	Description          string    `gorm:"column:description" json:"description"`
	Enabled              bool      `gorm:"column:enabled" json:"enabled"`
	MinimumOrigins       int       `gorm:"column:minimum_origins" json:"minimum_origins"`
	Monitor              string    `gorm:"column:monitor" json:"monitor"`
	OriginSteeringPolicy string    `gorm:"column:origin_steering_policy" json:"origin_steering_policy"`
	NotificationEmail    string    `gorm:"column:notification_email" json:"notification_email"`
	NotificationEnabled  bool      `gorm:"column:notification_enabled" json:"notification_enabled"`
	CreatedAt            time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Pool) TableName() string {
	return "cloudflare_lb_pools"
}

// Origin mirrors a single pool origin. Fully replaced per pool on each
// linking pass.
type Origin struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	PoolID     uint      `gorm:"column:pool_id;index" json:"pool_id"`
	Name       string    `gorm:"column:name" json:"name"`
	Address    string    `gorm:"column:address" json:"address"`
	Enabled    bool      `gorm:"column:enabled" json:"enabled"`
	Weight     float64   `gorm:"column:weight" json:"weight"`
	Port       *int      `gorm:"column:port" json:"port"`
	HeaderHost *string   `gorm:"column:header_host" json:"header_host"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Origin) TableName() string {
	return "cloudflare_lb_pool_origins"
}

// Credential is a per-user provider credential owned by the surrounding DNS
// manager product. The engine never creates or deletes rows here; it only
// updates the last_sync_* columns.
type Credential struct {
	ID             uint       `gorm:"column:id;primaryKey" json:"id"`
	UserID         uint       `gorm:"column:user_id" json:"user_id"`
	AccountID      uint       `gorm:"column:account_id" json:"account_id"`
	CFEmail        string     `gorm:"column:cf_email" json:"cf_email"`
	CFAPIKey       string     `gorm:"column:cf_api_key" json:"-"`
	CFAccountID    string     `gorm:"column:cf_account_id" json:"cf_account_id"`
	CFDomain       string     `gorm:"column:cf_domain" json:"cf_domain"`
	CFAPIURL       string     `gorm:"column:cf_api_url" json:"cf_api_url"`
	Enabled        bool       `gorm:"column:enabled" json:"enabled"`
	AutoSync       bool       `gorm:"column:auto_sync" json:"auto_sync"`
	LastSyncAt     *time.Time `gorm:"column:last_sync_at" json:"last_sync_at"`
	LastSyncStatus string     `gorm:"column:last_sync_status" json:"last_sync_status"`
	LastSyncError  string     `gorm:"column:last_sync_error" json:"last_sync_error"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Credential) TableName() string {
	return "dnsmanager_cloudflare_credentials"
}
