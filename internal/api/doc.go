// Package api defines the JSON request and response types shared by the
// daemon's HTTP server and the CLI client.
package api
