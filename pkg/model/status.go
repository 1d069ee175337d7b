package model

// Status is the outcome of the most recent run of a health test.
type Status int

//go:generate go run github.com/dmarkham/enumer -type Status -trimprefix Status -transform upper -json -sql -output status.gen.go

const (
	// StatusOK means the last run of the test passed.
	StatusOK Status = iota
	// StatusError means the last run of the test failed.
	StatusError
	// StatusNA means the test could not be run (e.g. the service is not configured).
	StatusNA
)
