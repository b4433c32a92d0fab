// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// listen port, the optional API key, and the graceful shutdown bound.
//
// # Usage
//
// This package is embedded by core/config and read by the start command.
package server
