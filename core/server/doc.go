// Package server holds the HTTP server configuration.
//
// The actual Fiber application is assembled in the serve command; this package
// only carries the settings (listen port, API key) so they can be bound by the
// central config loader.
package server
