// Package main provides healthwatchctl, the CLI for the Healthwatch server.
//
// Healthwatch monitors the health of configured HTTP services and stores
// per-test results in PostgreSQL, exposing them over a REST API.
//
// # Quick Start
//
//	# Run database migrations
//	healthwatchctl db migrate
//
//	# Start the server (runs migrations by default)
//	healthwatchctl server
//
//	# Run the configured probes once and print the results
//	healthwatchctl check
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - HEALTHWATCH_CONFIG_PATH: Config file path (default: /etc/healthwatch/healthwatch.yml)
//   - HEALTHWATCH_WRITE_TOKEN_KEY: HMAC key protecting write endpoints (optional)
//   - HEALTHWATCH_LOG_LEVEL: Log level (debug enables SQL logging)
//   - PORT: Server port (default: 8000)
package main
