package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"zone-mirror/core/cloudflare"
	"zone-mirror/core/database"
)

// hostKeys are the recognised failover host keys in mydns.conf, in priority order.
var hostKeys = []string{"db-host", "db-host2", "db-host3", "db-host4"}

// ParseKeyValueFile parses a simple key=value file (no sections).
// Blank lines and lines starting with '#' are skipped; inline comments after
// '#' are stripped; surrounding quotes around values are removed.
func ParseKeyValueFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s: %w", path, err)
	}
	defer f.Close()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"`)
		value = strings.Trim(value, `'`)
		data[strings.TrimSpace(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ParseAccountList splits a comma or newline separated account id list into tokens.
func ParseAccountList(value string) []string {
	if value == "" {
		return nil
	}
	var tokens []string
	for _, part := range strings.Split(strings.ReplaceAll(value, "\n", ","), ",") {
		if candidate := strings.TrimSpace(part); candidate != "" {
			tokens = append(tokens, candidate)
		}
	}
	return tokens
}

// LoadDatabaseConfig reads database connection details (including optional
// failover hosts and the host selection policy) from the legacy mydns.conf file.
func LoadDatabaseConfig(path string) (*database.Config, error) {
	raw, err := ParseKeyValueFile(path)
	if err != nil {
		return nil, err
	}

	user := firstOf(raw, "db-user", "mysql-user")
	password, hasPassword := anyOf(raw, "db-password", "mysql-password", "mysql-pass")
	name := raw["database"]
	if user == "" || !hasPassword || name == "" {
		return nil, fmt.Errorf("database connection details missing in %s", path)
	}

	var hosts []database.Host
	for _, key := range hostKeys {
		if val := raw[key]; val != "" {
			hosts = append(hosts, database.ParseHostEntry(val))
		}
	}
	if len(hosts) == 0 {
		if legacy := firstOf(raw, "mysql-host", "db-host"); legacy != "" {
			hosts = append(hosts, database.ParseHostEntry(legacy))
		}
	}
	if len(hosts) == 0 {
		hosts = append(hosts, database.Host{Name: "localhost", Port: database.DefaultPort})
	}

	return &database.Config{
		User:     user,
		Password: password,
		Name:     name,
		Hosts:    hosts,
		Policy:   database.ParsePolicy(raw["db-host-policy"]),
	}, nil
}

// LoadProviderConfig reads provider credentials and the account id list from
// the legacy cloudflare.ini file. Exactly one auth mode must be configured:
// either api_token, or email plus api_key.
func LoadProviderConfig(path string) (*cloudflare.Credentials, []string, error) {
	raw, err := ParseKeyValueFile(path)
	if err != nil {
		return nil, nil, err
	}

	accountIDs := ParseAccountList(raw["cf_account_ids"])
	if len(accountIDs) == 0 {
		return nil, nil, fmt.Errorf("cf_account_ids missing in %s", path)
	}

	creds := &cloudflare.Credentials{
		APIBase:  strings.TrimRight(raw["api"], "/"),
		Email:    raw["email"],
		APIKey:   raw["api_key"],
		APIToken: raw["api_token"],
	}
	if creds.APIToken == "" && (creds.Email == "" || creds.APIKey == "") {
		return nil, nil, fmt.Errorf("provider credentials incomplete in %s", path)
	}

	return creds, accountIDs, nil
}

// firstOf returns the first non-empty value among the given keys.
func firstOf(raw map[string]string, keys ...string) string {
	for _, key := range keys {
		if raw[key] != "" {
			return raw[key]
		}
	}
	return ""
}

// anyOf returns the first present value among the given keys.
// Unlike firstOf it reports presence, so an explicitly empty password is valid.
func anyOf(raw map[string]string, keys ...string) (string, bool) {
	for _, key := range keys {
		if val, ok := raw[key]; ok {
			return val, true
		}
	}
	return "", false
}
