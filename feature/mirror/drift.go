package mirror

import (
	"context"
	"fmt"
	"time"

	"zone-mirror/core/cloudflare"
	"zone-mirror/core/diff"
	"zone-mirror/feature/mirror/models"
)

// recordDriftAdapter diffs mirrored record rows against the provider's
// current record set. Keys are provider record ids.
type recordDriftAdapter struct{}

func (recordDriftAdapter) LocalKey(item diff.LocalItem) string {
	return item.(models.Record).CFRecordID
}

func (recordDriftAdapter) RemoteKey(item diff.RemoteItem) string {
	return item.(cloudflare.Record).ID
}

func (recordDriftAdapter) ResolveName(local diff.LocalItem, remote diff.RemoteItem) string {
	if local != nil {
		return local.(models.Record).Name
	}
	if remote != nil {
		return remote.(cloudflare.Record).Name
	}
	return ""
}

func (recordDriftAdapter) CompareFields(local diff.LocalItem, remote diff.RemoteItem) []string {
	row := local.(models.Record)
	record := remote.(cloudflare.Record)

	mismatches := []string{}
	if row.RecordType != record.Type {
		mismatches = append(mismatches, fmt.Sprintf("type: local=%s remote=%s", row.RecordType, record.Type))
	}
	if row.Content != record.Content {
		mismatches = append(mismatches, fmt.Sprintf("content: local=%s remote=%s", row.Content, record.Content))
	}
	if row.TTL != record.TTL {
		mismatches = append(mismatches, fmt.Sprintf("ttl: local=%d remote=%d", row.TTL, record.TTL))
	}
	if boolValue(row.Proxied) != boolValue(record.Proxied) {
		mismatches = append(mismatches, fmt.Sprintf("proxied: local=%t remote=%t", boolValue(row.Proxied), boolValue(record.Proxied)))
	}
	return mismatches
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

// Drift compares a mirrored zone's local record rows against the provider's
// current record set. Read-only: it never mutates either side. Useful as a
// sanity check that the replace pass left the store converged.
func (s *Service) Drift(ctx context.Context, zoneDBID uint) (*models.DriftReport, error) {
	var zone models.Zone
	if err := s.db.First(&zone, zoneDBID).Error; err != nil {
		return nil, fmt.Errorf("zone %d not found: %w", zoneDBID, err)
	}

	var local []models.Record
	if err := s.db.Where("zone_id = ?", zoneDBID).Find(&local).Error; err != nil {
		return nil, err
	}

	client, err := s.globalClient()
	if err != nil {
		return nil, err
	}
	remote, err := client.ListRecords(ctx, zone.CFZoneID)
	if err != nil {
		return nil, err
	}

	localItems := make([]diff.LocalItem, len(local))
	for i, row := range local {
		localItems[i] = row
	}
	remoteItems := make([]diff.RemoteItem, len(remote))
	for i, record := range remote {
		remoteItems[i] = record
	}

	results, summary := diff.Compare(recordDriftAdapter{}, localItems, remoteItems)
	return &models.DriftReport{
		ZoneID:      zone.ID,
		CFZoneID:    zone.CFZoneID,
		ZoneName:    zone.Name,
		GeneratedAt: time.Now(),
		InSync:      summary.InSync(),
		Summary:     summary,
		Results:     results,
	}, nil
}
