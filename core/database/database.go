package database

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrConnectionExhausted is returned when no configured database host accepts
// a connection. The last per-host error is wrapped alongside it.
var ErrConnectionExhausted = errors.New("no database host reachable")

// OrderedHosts returns the host candidates in the order dictated by the
// configured policy:
//
//   - sequential: list order unchanged.
//   - round-robin: rotation starting at a uniformly random position, spreading
//     load across runs without shared state.
//   - least-used: uniform random shuffle. No usage counters are persisted, so
//     this is an approximation of least-used routing, not the real thing.
//
// Unknown policies behave as sequential.
func (cfg Config) OrderedHosts() []Host {
	hosts := make([]Host, len(cfg.Hosts))
	copy(hosts, cfg.Hosts)
	if len(hosts) < 2 {
		return hosts
	}

	switch ParsePolicy(cfg.Policy) {
	case PolicyRoundRobin:
		start := rand.Intn(len(hosts))
		rotated := append(hosts[start:], hosts[:start]...)
		return rotated
	case PolicyLeastUsed:
		rand.Shuffle(len(hosts), func(i, j int) {
			hosts[i], hosts[j] = hosts[j], hosts[i]
		})
	}
	return hosts
}

// Connect establishes a connection to the first reachable database host,
// trying candidates in policy order. Each failed attempt is logged and the
// next candidate is tried; only after all candidates fail does it return
// ErrConnectionExhausted wrapping the last error.
func Connect(cfg Config, logg *zap.Logger) (*gorm.DB, error) {
	return connectHosts(cfg.OrderedHosts(), logg, func(host Host) (*gorm.DB, error) {
		return openHost(cfg, host)
	})
}

// connectHosts runs the failover loop over an explicit dial function.
func connectHosts(hosts []Host, logg *zap.Logger, dial func(Host) (*gorm.DB, error)) (*gorm.DB, error) {
	var lastErr error
	for _, host := range hosts {
		logg.Info("Attempting database connection",
			zap.String("host", host.Name),
			zap.Int("port", host.Port),
		)
		db, err := dial(host)
		if err != nil {
			logg.Error("Database connection failed",
				zap.String("host", host.Name),
				zap.Int("port", host.Port),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		logg.Info("Connected to database",
			zap.String("host", host.Name),
			zap.Int("port", host.Port),
		)
		return db, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrConnectionExhausted, lastErr)
}

// openHost opens a single MySQL connection with the configured timeouts.
func openHost(cfg Config, host Host) (*gorm.DB, error) {
	// Special characters in the password must be URL encoded in the DSN.
	userInfo := url.UserPassword(cfg.User, cfg.Password).String()

	dialTimeout := cfg.DialTimeoutSeconds
	if dialTimeout <= 0 {
		dialTimeout = 5
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	// timeout: connection setup; readTimeout/writeTimeout: statement I/O.
	// The short setup timeout is what makes the failover loop responsive.
	dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		userInfo, host.Name, host.Port, cfg.Name, dialTimeout, timeout, timeout)

	// Suppress GORM logging; connection attempts are logged by the caller.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// The reconciliation engine owns the connection for the duration of a
	// run and writes one transaction at a time, so the pool stays small.
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}
