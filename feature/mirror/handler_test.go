package mirror

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"zone-mirror/core/cloudflare"
	"zone-mirror/feature/mirror/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Zone{},
		&models.Record{},
		&models.LoadBalancer{},
		&models.Pool{},
		&models.Origin{},
		&models.Credential{},
	))
	return db
}

// writeProviderConfig writes a cloudflare.ini pointing at the given API base.
func writeProviderConfig(t *testing.T, apiBase string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cloudflare.ini")
	content := fmt.Sprintf("api = %s\napi_token = test-token\ncf_account_ids = acc1\n", apiBase)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setupTestService(t *testing.T, provider http.Handler) (*Service, *fiber.App) {
	t.Helper()
	db := setupTestDB(t)

	cfPath := ""
	if provider != nil {
		srv := httptest.NewServer(provider)
		t.Cleanup(srv.Close)
		cfPath = writeProviderConfig(t, srv.URL)
	}

	svc := NewService(db, zap.NewNop(), cloudflare.Config{}, cfPath, nil)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return svc, app
}

func TestHandleStatusIdle(t *testing.T) {
	_, app := setupTestService(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/mirror/status", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var status Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status.Running)
	assert.Nil(t, status.LastRun)
}

func TestHandleTriggerSyncConflict(t *testing.T) {
	svc, app := setupTestService(t, nil)

	require.True(t, svc.tryStart())
	defer svc.finish()

	resp, err := app.Test(httptest.NewRequest("POST", "/mirror/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestHandleTriggerSyncStarts(t *testing.T) {
	_, app := setupTestService(t, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/mirror/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "started", body["status"])
}

func TestHandleListZones(t *testing.T) {
	svc, app := setupTestService(t, nil)

	account := models.Account{CFAccountID: "acc1", Name: "Acme"}
	require.NoError(t, svc.db.Create(&account).Error)
	zone := models.Zone{AccountID: account.ID, CFZoneID: "cfz1", Name: "alpha.example"}
	require.NoError(t, svc.db.Create(&zone).Error)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.db.Create(&models.Record{
			ZoneID:     zone.ID,
			CFRecordID: fmt.Sprintf("r%d", i),
			RecordType: "A",
		}).Error)
	}
	require.NoError(t, svc.db.Create(&models.LoadBalancer{ZoneID: zone.ID, CFLBID: "lb1"}).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/mirror/zones", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var overviews []models.ZoneOverview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&overviews))
	require.Len(t, overviews, 1)
	assert.Equal(t, "alpha.example", overviews[0].Name)
	assert.Equal(t, 3, overviews[0].RecordCount)
	assert.Equal(t, 1, overviews[0].LoadBalancerCount)
}

func TestHandleZoneDriftInvalidID(t *testing.T) {
	_, app := setupTestService(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/mirror/zones/abc/drift", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleZoneDrift(t *testing.T) {
	provider := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/zones/cfz1/dns_records", r.URL.Path)
		fmt.Fprint(w, `{"success": true, "result": [
			{"id": "r1", "type": "A", "name": "www.alpha.example", "content": "192.0.2.1", "ttl": 300}
		], "result_info": {"total_pages": 1}}`)
	})
	svc, app := setupTestService(t, provider)

	account := models.Account{CFAccountID: "acc1", Name: "Acme"}
	require.NoError(t, svc.db.Create(&account).Error)
	zone := models.Zone{AccountID: account.ID, CFZoneID: "cfz1", Name: "alpha.example"}
	require.NoError(t, svc.db.Create(&zone).Error)
	require.NoError(t, svc.db.Create(&models.Record{
		ZoneID:     zone.ID,
		CFRecordID: "r1",
		RecordType: "A",
		Name:       "www.alpha.example",
		Content:    "192.0.2.1",
		TTL:        300,
	}).Error)

	resp, err := app.Test(httptest.NewRequest("GET", fmt.Sprintf("/mirror/zones/%d/drift", zone.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report models.DriftReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.InSync)
	assert.Equal(t, "cfz1", report.CFZoneID)
	assert.Equal(t, 1, report.Summary.Total)
}
