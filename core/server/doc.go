// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber application from this configuration:
// listen port, request timeouts and the API key protecting every route.
package server
