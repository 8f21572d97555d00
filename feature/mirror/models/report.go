package models

import (
	"time"

	"zone-mirror/core/diff"
)

// Run statuses reported in a RunSummary.
const (
	RunStatusSuccess = "success"
	RunStatusPartial = "partial"
	RunStatusFailed  = "failed"
)

// UnitResult is the machine-readable outcome of one sync unit (one
// credential, global or per-user).
type UnitResult struct {
	// Label identifies the unit in logs and summaries, e.g. "global" or
	// "credential 7 (user 3)".
	Label string `json:"label"`

	// CredentialID is set for per-user units; nil for the global unit, whose
	// status is not persisted anywhere.
	CredentialID *uint `json:"credential_id,omitempty"`

	// Status is success, partial, or failed.
	Status string `json:"status"`

	// Error carries the abort message for failed units.
	Error string `json:"error,omitempty"`

	Zones         int `json:"zones"`
	Records       int `json:"records"`
	LoadBalancers int `json:"load_balancers"`
	Pools         int `json:"pools"`
	Origins       int `json:"origins"`
	Errors        int `json:"errors"`
}

// RunSummary aggregates a whole reconciliation run. Machine consumers should
// read the Errors field rather than scraping log text.
type RunSummary struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Status     string       `json:"status"`
	Units      []UnitResult `json:"units"`

	Zones         int `json:"zones"`
	Records       int `json:"records"`
	LoadBalancers int `json:"load_balancers"`
	Pools         int `json:"pools"`
	Origins       int `json:"origins"`
	Errors        int `json:"errors"`
}

// Add merges one unit result into the aggregate counters.
func (s *RunSummary) Add(unit UnitResult) {
	s.Units = append(s.Units, unit)
	s.Zones += unit.Zones
	s.Records += unit.Records
	s.LoadBalancers += unit.LoadBalancers
	s.Pools += unit.Pools
	s.Origins += unit.Origins
	s.Errors += unit.Errors
}

// Finish computes the overall status: failed only if every unit failed,
// partial if any unit recorded an error, success otherwise.
func (s *RunSummary) Finish() {
	s.FinishedAt = time.Now()

	failed := 0
	for _, unit := range s.Units {
		if unit.Status == RunStatusFailed {
			failed++
		}
	}
	switch {
	case len(s.Units) > 0 && failed == len(s.Units):
		s.Status = RunStatusFailed
	case s.Errors > 0:
		s.Status = RunStatusPartial
	default:
		s.Status = RunStatusSuccess
	}
}

// ZoneOverview is a mirrored zone with child row counts, for the HTTP API.
type ZoneOverview struct {
	Zone
	RecordCount       int `json:"record_count"`
	LoadBalancerCount int `json:"load_balancer_count"`
}

// DriftReport is the read-only comparison of a mirrored zone's local record
// rows against the provider's current record set.
type DriftReport struct {
	ZoneID      uint          `json:"zone_id"`
	CFZoneID    string        `json:"cf_zone_id"`
	ZoneName    string        `json:"zone_name"`
	GeneratedAt time.Time     `json:"generated_at"`
	InSync      bool          `json:"in_sync"`
	Summary     diff.Summary  `json:"summary"`
	Results     []diff.Result `json:"results"`
}
