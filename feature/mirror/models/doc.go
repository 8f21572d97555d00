// Package models defines the persisted schema of the mirror feature and the
// report types exposed over the HTTP API.
//
// Seven tables are mirrored from the provider: accounts, zones, records,
// load balancers, pools, origins, and the per-user credentials table owned by
// the surrounding DNS manager product. Provider identifiers (cf_*_id columns)
// are the natural keys for upserts; the local auto-increment id is what child
// rows reference.
package models
