// Package model defines the database models for healthwatch.
//
// This package contains GORM models that map to the health schema.
//
// # Core Models
//
//   - TestResult: last-known outcome per (service, test) pair
//   - ServiceHealth: per-service rollup of test results
//
// # Database Schema
//
// The database uses PostgreSQL with two tables:
//
//   - api_health_tests: one row per probe, upserted on every result
//   - api_health_checks: one row per service, recomputed after each run
package model
