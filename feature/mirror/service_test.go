package mirror

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"zone-mirror/feature/mirror/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSyncBlocksConcurrentRuns(t *testing.T) {
	svc, _ := setupTestService(t, nil)

	require.True(t, svc.tryStart())
	_, err := svc.RunSync(context.Background())
	assert.ErrorIs(t, err, ErrSyncInFlight)
	svc.finish()
}

func TestRunSyncStoresLastRun(t *testing.T) {
	provider := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/zones":
			fmt.Fprint(w, `{"success": true, "result": [
				{"id": "cfz1", "name": "alpha.example", "account": {"id": "acc1", "name": "Acme"}}
			], "result_info": {"total_pages": 1}}`)
		case "/zones/cfz1/dns_records":
			fmt.Fprint(w, `{"success": true, "result": [
				{"id": "r1", "type": "A", "name": "alpha.example", "content": "192.0.2.1", "ttl": 300}
			], "result_info": {"total_pages": 1}}`)
		case "/zones/cfz1/load_balancers":
			fmt.Fprint(w, `{"success": true, "result": [], "result_info": {"total_pages": 1}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"success": false, "errors": [{"message": "no route"}]}`)
		}
	})
	svc, _ := setupTestService(t, provider)

	summary, err := svc.RunSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSuccess, summary.Status)
	assert.Equal(t, 1, summary.Zones)
	assert.Equal(t, 1, summary.Records)

	status := svc.Status()
	assert.False(t, status.Running)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, summary.Status, status.LastRun.Status)

	zones, err := svc.ListZones(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, 1, zones[0].RecordCount)
}

func TestRunSyncWithoutAnyCredentials(t *testing.T) {
	// No cloudflare.ini and no credential rows: the run has no units and
	// finishes clean instead of erroring.
	svc, _ := setupTestService(t, nil)

	summary, err := svc.RunSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSuccess, summary.Status)
	assert.Empty(t, summary.Units)
}
