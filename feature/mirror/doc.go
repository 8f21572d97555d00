// Package mirror is the domain feature: it keeps a local relational mirror
// of provider DNS and load balancing configuration so the DNS server can
// answer geo/health-aware queries without calling the provider API.
//
// The write path lives in the sync subpackage (credential aggregation,
// reconciliation engine, pool linking); this package provides the read side:
// the service with run orchestration, zone listings, drift verification, and
// the HTTP handler mounted by serve mode.
package mirror
