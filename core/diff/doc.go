// Package diff provides a small generic two-source diff engine.
//
// It compares a locally persisted entity set against the provider's view of
// the same set and reports which entities are missing on either side plus
// field-level mismatches for entities present on both. It never mutates
// either side; the drift verification feature uses it as a read-only sanity
// check of the replace semantics used by the sync engine.
//
// # Adapters
//
// Entity-specific logic (key extraction, naming, field comparison) lives
// behind the Adapter interface, so the same engine can diff DNS records
// today and other mirrored entities later.
package diff
