// Package sync implements the reconciliation engine: it fetches provider
// state for every credential and converges the local tables to match it.
//
// # Units
//
// The Aggregator yields one Unit per credential source: the optional global
// set from cloudflare.ini first, then every enabled auto-sync row from the
// credentials table, secrets decrypted with the injected cipher. Units run
// strictly sequentially over the single database connection.
//
// # Per-Zone State Machine
//
// For each zone:
//
//	Fetch -> UpsertZone -> ReplaceRecords -> ReplaceLoadBalancers -> MarkSynced -> Commit
//
// with rollback as the sole error transition. Parents are always written
// before children inside the same transaction scope, and generated ids come
// back from the upsert statement itself.
//
// # Failure Containment
//
// An error while syncing one zone rolls back that zone and increments the
// unit's error counter; the next zone proceeds. An error listing zones skips
// that account. A credential that cannot be processed at all is marked
// failed. Nothing at unit level ever unwinds past its containing loop, so the
// run always produces a full summary.
//
// Re-running the engine with unchanged provider state leaves the store
// byte-identical except for refreshed timestamps.
package sync
