// Package server provides the healthwatch HTTP server. Endpoint handlers
// live in the endpoints subpackage and storage in the store subpackage.
package server
