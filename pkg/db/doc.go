// Package db provides the PostgreSQL connection used by the stores.
package db
