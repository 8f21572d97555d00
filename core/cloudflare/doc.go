// Package cloudflare implements the provider API client.
//
// The client is constructed per credential: a bearer token, or an email plus
// API key pair. Exactly one auth mode is used per client.
//
// # Pagination
//
// List endpoints are fetched page by page with a fixed page size until the
// response's reported total page count is reached. A missing or zero
// total_pages is treated as a single page. All pages are accumulated into one
// in-memory slice before returning; zone and record sets are small enough for
// this to be the simplest correct behavior.
//
// # Error Classification
//
// Transport failures, non-2xx statuses, unparsable bodies, and bodies whose
// success flag is false all surface as *APIError with the status code and a
// truncated message. Callers decide whether to skip or abort.
//
// The one exception is ListLoadBalancers, whose failures are soft: load
// balancers are optional, so errors are logged and an empty list returned.
//
// # Raw Payloads
//
// Every list element is decoded into a typed struct for the known fields, and
// the verbatim JSON element is kept in the Raw field so the store can preserve
// provider fields that are not modeled.
package cloudflare
