package cloudflare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxErrorMessage caps the message carried by an APIError so huge HTML error
// pages don't end up in logs or the credentials status column.
const maxErrorMessage = 200

// APIError describes any provider API failure: transport errors, non-2xx
// statuses, unparsable bodies, and bodies whose success flag is false.
// StatusCode is zero for transport-level failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider request failed: %s", e.Message)
	}
	return fmt.Sprintf("provider API error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the provider API for a single credential.
type Client struct {
	base   string
	creds  Credentials
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New creates a provider client for the given credentials.
func New(creds Credentials, cfg Config, logg *zap.Logger) *Client {
	base := strings.TrimRight(creds.APIBase, "/")
	if base == "" {
		base = DefaultAPIBase
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	// Custom transport with strict timeouts; the client-level timeout is the
	// fixed per-call deadline.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &Client{
		base:  base,
		creds: creds,
		cfg:   cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
		logger: logg,
	}
}

// ListZones returns all zones of the given provider account, across pages.
func (c *Client) ListZones(ctx context.Context, accountID string) ([]Zone, error) {
	params := url.Values{"account.id": {accountID}}
	raws, err := c.paginatedGet(ctx, "/zones", params, c.pageSize(c.cfg.ZonesPerPage, 50))
	if err != nil {
		return nil, err
	}

	zones := make([]Zone, 0, len(raws))
	for _, raw := range raws {
		var zone Zone
		if err := json.Unmarshal(raw, &zone); err != nil {
			return nil, &APIError{Message: truncate("malformed zone element: " + err.Error())}
		}
		zone.Raw = raw
		zones = append(zones, zone)
	}
	return zones, nil
}

// ListRecords returns all DNS records of the given zone, across pages.
func (c *Client) ListRecords(ctx context.Context, zoneID string) ([]Record, error) {
	path := fmt.Sprintf("/zones/%s/dns_records", zoneID)
	raws, err := c.paginatedGet(ctx, path, nil, c.pageSize(c.cfg.RecordsPerPage, 100))
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		var record Record
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, &APIError{Message: truncate("malformed record element: " + err.Error())}
		}
		record.Raw = raw
		records = append(records, record)
	}
	return records, nil
}

// ListLoadBalancers returns all load balancers of the given zone.
// Failures here are soft: load balancers are an optional product, so any
// error is logged and an empty list is returned instead of aborting the
// zone sync. Records do not get this treatment.
func (c *Client) ListLoadBalancers(ctx context.Context, zoneID string) []LoadBalancer {
	path := fmt.Sprintf("/zones/%s/load_balancers", zoneID)
	raws, err := c.paginatedGet(ctx, path, nil, c.pageSize(c.cfg.LoadBalancersPerPage, 50))
	if err != nil {
		c.logger.Warn("Skipping load balancers for zone",
			zap.String("cf_zone_id", zoneID),
			zap.Error(err),
		)
		return nil
	}

	balancers := make([]LoadBalancer, 0, len(raws))
	for _, raw := range raws {
		var lb LoadBalancer
		if err := json.Unmarshal(raw, &lb); err != nil {
			c.logger.Warn("Skipping malformed load balancer element",
				zap.String("cf_zone_id", zoneID),
				zap.Error(err),
			)
			continue
		}
		lb.Raw = raw
		balancers = append(balancers, lb)
	}
	return balancers
}

// GetPool fetches full detail for a single load balancer pool.
func (c *Client) GetPool(ctx context.Context, accountID, poolID string) (*Pool, error) {
	path := fmt.Sprintf("/accounts/%s/load_balancers/pools/%s", accountID, poolID)
	decoded, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var pool Pool
	if err := json.Unmarshal(decoded.Result, &pool); err != nil {
		return nil, &APIError{Message: truncate("malformed pool detail: " + err.Error())}
	}
	pool.Raw = decoded.Result
	return &pool, nil
}

// paginatedGet requests pages of the given list endpoint until the reported
// total page count is reached. An absent or zero total_pages is treated as a
// single page. Elements are accumulated in page order.
func (c *Client) paginatedGet(ctx context.Context, path string, params url.Values, perPage int) ([]json.RawMessage, error) {
	var results []json.RawMessage
	page := 1
	for {
		pageParams := url.Values{}
		for key, vals := range params {
			pageParams[key] = vals
		}
		pageParams.Set("page", strconv.Itoa(page))
		pageParams.Set("per_page", strconv.Itoa(perPage))

		decoded, err := c.get(ctx, path, pageParams)
		if err != nil {
			return nil, err
		}

		var batch []json.RawMessage
		if len(decoded.Result) > 0 {
			if err := json.Unmarshal(decoded.Result, &batch); err != nil {
				return nil, &APIError{Message: truncate("expected result array: " + err.Error())}
			}
		}
		results = append(results, batch...)

		totalPages := decoded.ResultInfo.TotalPages
		if totalPages == 0 || page >= totalPages {
			return results, nil
		}
		page++
	}
}

// get issues one GET request and classifies the outcome.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*envelope, error) {
	reqURL := c.base + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &APIError{Message: truncate(err.Error())}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.creds.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.creds.APIToken)
	} else {
		req.Header.Set("X-Auth-Email", c.creds.Email)
		req.Header.Set("X-Auth-Key", c.creds.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: truncate(err.Error())}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: truncate(err.Error())}
	}

	var decoded envelope
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: truncate("invalid response: " + string(body))}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !decoded.Success {
		message := string(decoded.Errors)
		if message == "" || message == "null" {
			message = string(decoded.Messages)
		}
		if message == "" || message == "null" {
			message = string(body)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: truncate(message)}
	}

	return &decoded, nil
}

// pageSize returns the configured page size or the endpoint default.
func (c *Client) pageSize(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}

func truncate(message string) string {
	if len(message) > maxErrorMessage {
		return message[:maxErrorMessage]
	}
	return message
}

// IsAPIError reports whether err is (or wraps) a provider APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
