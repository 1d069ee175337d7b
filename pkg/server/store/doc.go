// Package store defines the storage interfaces used by the server and the
// monitor. The gorm subpackage provides the PostgreSQL implementations.
package store
