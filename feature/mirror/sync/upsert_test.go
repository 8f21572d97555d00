package sync

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"zone-mirror/core/cloudflare"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB wires sqlmock behind the MySQL dialector so the production
// upsert branch runs instead of the sqlite one.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestUpsertAccountMySQL(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cloudflare_accounts")).
		WithArgs("acc1", "Acme Corp").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT LAST_INSERT_ID()")).
		WillReturnRows(sqlmock.NewRows([]string{"LAST_INSERT_ID()"}).AddRow(42))
	mock.ExpectCommit()

	var id uint
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = upsertAccount(tx, "acc1", "Acme Corp")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertZoneMySQL(t *testing.T) {
	db, mock := setupMockDB(t)

	zone := cloudflare.Zone{
		ID:     "cfz1",
		Name:   "alpha.example",
		Status: "active",
		Type:   "full",
	}
	zone.Plan.Name = "Free"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cloudflare_zones")).
		WithArgs(uint(7), "cfz1", "alpha.example", "active", false, "full", "Free").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT LAST_INSERT_ID()")).
		WillReturnRows(sqlmock.NewRows([]string{"LAST_INSERT_ID()"}).AddRow(11))
	mock.ExpectCommit()

	var id uint
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = upsertZone(tx, 7, zone)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, uint(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncZoneRollsBackOnInsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cloudflare_zones")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT LAST_INSERT_ID()")).
		WillReturnRows(sqlmock.NewRows([]string{"LAST_INSERT_ID()"}).AddRow(11))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `cloudflare_records`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `cloudflare_records`")).
		WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	err := db.Transaction(func(tx *gorm.DB) error {
		zoneDBID, err := upsertZone(tx, 7, cloudflare.Zone{ID: "cfz1", Name: "alpha.example"})
		if err != nil {
			return err
		}
		return replaceRecords(tx, zoneDBID, []cloudflare.Record{
			{ID: "r1", Type: "A", Name: "alpha.example", Content: "192.0.2.1", TTL: 300},
		})
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseTimestamp(t *testing.T) {
	ts := parseTimestamp("2026-08-30T10:00:00Z")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), ts.UTC())

	assert.Nil(t, parseTimestamp(""))
	assert.Nil(t, parseTimestamp("not a timestamp"))
}

func TestFallbackAccountName(t *testing.T) {
	assert.Equal(t, "Account 0123abcd", fallbackAccountName("0123abcdef9876"))
	assert.Equal(t, "Account short", fallbackAccountName("short"))
}
