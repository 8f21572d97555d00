package cloudflare

// DefaultAPIBase is the provider API endpoint used when none is configured.
const DefaultAPIBase = "https://api.cloudflare.com/client/v4"

// Config holds tunables for the provider API client.
// Credentials are not part of this struct; each sync unit carries its own.
type Config struct {
	// TimeoutSeconds is the fixed deadline for each API call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ZonesPerPage is the page size for zone listing.
	ZonesPerPage int `mapstructure:"zones_per_page" default:"50"`
	// RecordsPerPage is the page size for DNS record listing.
	RecordsPerPage int `mapstructure:"records_per_page" default:"100"`
	// LoadBalancersPerPage is the page size for load balancer listing.
	LoadBalancersPerPage int `mapstructure:"load_balancers_per_page" default:"50"`
}

// Credentials identifies one provider account access. Exactly one auth mode
// is used per credential: a bearer token if set, otherwise email + key.
type Credentials struct {
	// APIBase overrides the API endpoint; empty means DefaultAPIBase.
	APIBase string
	// Email is the account email for key-based auth.
	Email string
	// APIKey is the account API key for key-based auth.
	APIKey string
	// APIToken is the bearer token. Takes precedence over email + key.
	APIToken string
}
