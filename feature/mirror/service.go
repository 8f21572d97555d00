package mirror

import (
	"context"
	"errors"
	"os"
	stdsync "sync"

	"zone-mirror/core/cloudflare"
	"zone-mirror/core/config"
	"zone-mirror/core/secrets"
	"zone-mirror/feature/mirror/models"
	"zone-mirror/feature/mirror/sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSyncInFlight is returned when a sync is requested while one is running.
// The engine owns the database connection for the duration of a run, so runs
// never overlap.
var ErrSyncInFlight = errors.New("a sync run is already in flight")

// Status describes the engine state for the HTTP API.
type Status struct {
	Running bool               `json:"running"`
	LastRun *models.RunSummary `json:"last_run,omitempty"`
}

// Service handles mirror operations: triggering sync runs, zone listings, and
// drift verification.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	engine *sync.Engine
	agg    *sync.Aggregator
	apiCfg cloudflare.Config
	cfPath string

	mu      stdsync.Mutex
	running bool
	lastRun *models.RunSummary
}

// NewService creates a mirror service. cfPath is the legacy cloudflare.ini
// location supplying the optional global credential set; cipher decrypts
// per-user secrets and may be nil when no key is configured.
func NewService(db *gorm.DB, logg *zap.Logger, apiCfg cloudflare.Config, cfPath string, cipher *secrets.Cipher) *Service {
	return &Service{
		db:     db,
		logger: logg,
		engine: sync.NewEngine(db, logg),
		agg:    sync.NewAggregator(db, cipher, apiCfg, logg),
		apiCfg: apiCfg,
		cfPath: cfPath,
	}
}

// Status returns the engine state and the last run summary, if any.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Running: s.running, LastRun: s.lastRun}
}

// RunSync performs one full reconciliation run and blocks until it finishes.
// Returns ErrSyncInFlight if a run is already active.
func (s *Service) RunSync(ctx context.Context) (*models.RunSummary, error) {
	if !s.tryStart() {
		return nil, ErrSyncInFlight
	}
	defer s.finish()

	global, err := s.loadGlobal()
	if err != nil {
		s.logger.Error("Failed to load global credentials", zap.Error(err))
		// The per-user credentials can still sync.
	}

	units, err := s.agg.Units(global, true)
	if err != nil {
		return nil, err
	}

	summary := s.engine.Run(ctx, units)
	s.mu.Lock()
	s.lastRun = summary
	s.mu.Unlock()
	return summary, nil
}

// TriggerSync starts a reconciliation run in the background. Returns
// ErrSyncInFlight if one is already active; the scheduler and the HTTP
// trigger both simply skip in that case.
func (s *Service) TriggerSync() error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if running {
		return ErrSyncInFlight
	}

	go func() {
		if _, err := s.RunSync(context.Background()); err != nil && !errors.Is(err, ErrSyncInFlight) {
			s.logger.Error("Background sync failed", zap.Error(err))
		}
	}()
	return nil
}

// ListZones returns every mirrored zone with its child row counts.
func (s *Service) ListZones(ctx context.Context) ([]models.ZoneOverview, error) {
	var zones []models.Zone
	if err := s.db.WithContext(ctx).Order("id").Find(&zones).Error; err != nil {
		return nil, err
	}

	recordCounts, err := s.countByZone(ctx, models.Record{}.TableName())
	if err != nil {
		return nil, err
	}
	lbCounts, err := s.countByZone(ctx, models.LoadBalancer{}.TableName())
	if err != nil {
		return nil, err
	}

	overviews := make([]models.ZoneOverview, 0, len(zones))
	for _, zone := range zones {
		overviews = append(overviews, models.ZoneOverview{
			Zone:              zone,
			RecordCount:       recordCounts[zone.ID],
			LoadBalancerCount: lbCounts[zone.ID],
		})
	}
	return overviews, nil
}

func (s *Service) countByZone(ctx context.Context, table string) (map[uint]int, error) {
	type zoneCount struct {
		ZoneID uint
		Total  int
	}
	var rows []zoneCount
	err := s.db.WithContext(ctx).
		Table(table).
		Select("zone_id, COUNT(*) AS total").
		Group("zone_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.ZoneID] = row.Total
	}
	return counts, nil
}

// loadGlobal reads the optional static credential set. A missing file is not
// an error; it just means there is no global unit.
func (s *Service) loadGlobal() (*sync.GlobalCredential, error) {
	if s.cfPath == "" {
		return nil, nil
	}
	if _, err := os.Stat(s.cfPath); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	creds, accountIDs, err := config.LoadProviderConfig(s.cfPath)
	if err != nil {
		return nil, err
	}
	return &sync.GlobalCredential{Creds: *creds, AccountIDs: accountIDs}, nil
}

// globalClient builds a provider client from the static credential set, used
// by read-only operations like drift verification.
func (s *Service) globalClient() (*cloudflare.Client, error) {
	global, err := s.loadGlobal()
	if err != nil {
		return nil, err
	}
	if global == nil {
		return nil, errors.New("no provider credentials configured")
	}
	return cloudflare.New(global.Creds, s.apiCfg, s.logger), nil
}

func (s *Service) tryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) finish() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
