// Package database provides the MySQL connection layer with multi-host
// failover and embedded schema migrations.
//
// # Host Failover
//
// The legacy mydns.conf file may list up to four host candidates plus a
// selection policy. Connect orders the candidates per policy (sequential,
// round-robin from a random start, or a shuffle approximating least-used)
// and tries each with a short setup timeout, returning
// ErrConnectionExhausted only after every candidate failed.
//
// # Migrations
//
// Schema migrations are embedded SQL files applied with golang-migrate.
// Running them against a schema that already has data is a no-op for
// applied versions, so the sync engine can be pointed at an existing
// installation.
//
// # Usage
//
//	db, err := database.Connect(cfg, logg)
//	if err != nil {
//	    return err
//	}
//	if err := database.Migrate(db); err != nil {
//	    return err
//	}
package database
