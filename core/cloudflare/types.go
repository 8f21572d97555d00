package cloudflare

import "encoding/json"

// Zone is a provider DNS zone. Raw carries the verbatim response element for
// fields not otherwise modeled.
type Zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Paused bool   `json:"paused"`
	Type   string `json:"type"`
	Plan   struct {
		Name string `json:"name"`
	} `json:"plan"`
	Account struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"account"`
	Raw json.RawMessage `json:"-"`
}

// Record is a provider DNS record.
// Proxied and Priority are pointers so that absence in the payload is
// distinguishable from false/zero.
type Record struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	Content    string          `json:"content"`
	TTL        int             `json:"ttl"`
	Proxied    *bool           `json:"proxied"`
	Priority   *int            `json:"priority"`
	Comment    string          `json:"comment"`
	Tags       []string        `json:"tags"`
	ModifiedOn string          `json:"modified_on"`
	Raw        json.RawMessage `json:"-"`
}

// LoadBalancer is a provider load balancer. DefaultPools carries opaque pool
// identifiers; they are resolved by the pool linking pass, not here.
type LoadBalancer struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Proxied        *bool           `json:"proxied"`
	Enabled        *bool           `json:"enabled"`
	FallbackPool   string          `json:"fallback_pool"`
	DefaultPools   []string        `json:"default_pools"`
	SteeringPolicy string          `json:"steering_policy"`
	Raw            json.RawMessage `json:"-"`
}

// Pool is a provider load balancer pool with its origins.
type Pool struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Enabled        *bool  `json:"enabled"`
	MinimumOrigins int    `json:"minimum_origins"`
	Monitor        string `json:"monitor"`
	OriginSteering struct {
		Policy string `json:"policy"`
	} `json:"origin_steering"`
	NotificationEmail  string                     `json:"notification_email"`
	NotificationFilter map[string]json.RawMessage `json:"notification_filter"`
	Origins            []Origin                   `json:"origins"`
	Raw                json.RawMessage            `json:"-"`
}

// NotifiesPoolEvents reports whether the pool's notification filter mentions
// pool-level events.
func (p *Pool) NotifiesPoolEvents() bool {
	_, ok := p.NotificationFilter["pool"]
	return ok
}

// Origin is a single pool origin.
type Origin struct {
	Name    string              `json:"name"`
	Address string              `json:"address"`
	Enabled *bool               `json:"enabled"`
	Weight  float64             `json:"weight"`
	Port    *int                `json:"port"`
	Header  map[string][]string `json:"header"`
}

// HostHeader returns the Host header override, if any.
func (o *Origin) HostHeader() string {
	if hosts := o.Header["Host"]; len(hosts) > 0 {
		return hosts[0]
	}
	return ""
}

// envelope is the provider's standard response wrapper.
type envelope struct {
	Success    bool            `json:"success"`
	Errors     json.RawMessage `json:"errors"`
	Messages   json.RawMessage `json:"messages"`
	Result     json.RawMessage `json:"result"`
	ResultInfo struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalPages int `json:"total_pages"`
	} `json:"result_info"`
}
