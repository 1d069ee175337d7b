package store

// HealthStore reports on the server's own dependencies, backing the
// detailed health endpoint.
type HealthStore interface {
	// CheckConnectivity verifies the database connection is usable
	CheckConnectivity() error
}
