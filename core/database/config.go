package database

import (
	"strconv"
	"strings"
)

// DefaultPort is the MySQL port assumed when a host entry carries none.
const DefaultPort = 3306

// Selection policies for the configured host list.
const (
	PolicySequential = "sequential"
	PolicyRoundRobin = "round-robin"
	PolicyLeastUsed  = "least-used"
)

// Host is a single database host candidate.
type Host struct {
	// Name is the hostname or IP address.
	Name string
	// Port is the TCP port.
	Port int
}

// Config holds configuration for the database connection.
// It is populated from the legacy mydns.conf file rather than the
// environment, since the surrounding DNS server owns that file.
type Config struct {
	// User is the database user.
	User string
	// Password is the database password.
	Password string
	// Name is the database name.
	Name string
	// Hosts is the ordered list of failover candidates.
	Hosts []Host
	// Policy selects the connection order (sequential, round-robin, least-used).
	Policy string
	// DialTimeoutSeconds is the per-host connection setup timeout.
	DialTimeoutSeconds int
	// TimeoutSeconds is the statement read/write timeout.
	TimeoutSeconds int
}

// ParsePolicy normalises a policy name from configuration.
// Aliases from the legacy config (roundrobin, rr, least_used, least) are
// accepted; anything unknown falls back to sequential.
func ParsePolicy(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case PolicyRoundRobin, "roundrobin", "rr":
		return PolicyRoundRobin
	case PolicyLeastUsed, "least_used", "least":
		return PolicyLeastUsed
	default:
		return PolicySequential
	}
}

// ParseHostEntry splits host entries like "db.example:3306" or "[fd00::1]:3307"
// into a Host. Bare IPv6 literals should be wrapped in [] if a port is given.
func ParseHostEntry(entry string) Host {
	entry = strings.TrimSpace(entry)
	host := Host{Name: entry, Port: DefaultPort}

	if strings.HasPrefix(entry, "[") {
		if idx := strings.Index(entry, "]"); idx >= 0 {
			host.Name = entry[1:idx]
			if len(entry) > idx+1 && entry[idx+1] == ':' {
				if port, err := strconv.Atoi(entry[idx+2:]); err == nil {
					host.Port = port
				}
			}
			return host
		}
	}

	// A single colon separates host from port; more than one means a bare
	// IPv6 literal without a port.
	if strings.Count(entry, ":") == 1 {
		name, portPart, _ := strings.Cut(entry, ":")
		if name != "" {
			host.Name = name
		}
		host.Port = DefaultPort
		if portPart != "" {
			if port, err := strconv.Atoi(portPart); err == nil {
				host.Port = port
			}
		}
	}

	return host
}
