// Package config provides configuration management for zone-mirror.
//
// It utilizes Viper for loading application settings from environment
// variables and an optional .env file, and additionally parses the two legacy
// key=value files the DNS server already ships:
//
//   - mydns.conf: database credentials, up to four failover hosts
//     (db-host..db-host4, optional :port / [IPv6]:port) and the host
//     selection policy.
//   - cloudflare.ini: provider credentials (api_token, or email + api_key)
//     and the comma/newline separated cf_account_ids list.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Cloudflare: provider API tunables (base URL, page sizes, timeout)
//   - Sync: encryption key, scheduler interval, legacy file paths
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dbCfg, err := config.LoadDatabaseConfig(cfg.Sync.MyDNSConfig)
package config
