package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/doodlesbykumbi/healthwatch/pkg/model"
)

// Length limits enforced by the api_health_tests schema.
const (
	MaxServiceNameLen = 100
	MaxTestNameLen    = 255
)

// ErrResultNotFound is returned when no result exists for a probe
var ErrResultNotFound = errors.New("test result not found")

// ErrInvalidResult is returned when a submitted result fails validation
var ErrInvalidResult = errors.New("invalid test result")

// Result represents the current state of one probe
type Result struct {
	ServiceName  string       `json:"service_name"`
	TestName     string       `json:"test_name"`
	LastStatus   model.Status `json:"last_status"`
	ErrorMessage *string      `json:"error_message"`
	DurationMS   *int         `json:"duration_ms"`
	UpdatedAt    time.Time    `json:"updated_at"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NewResult builds a validated Result for recording. It rejects empty or
// oversized names before anything reaches the database, and normalizes
// error_message to nil unless the status is ERROR.
func NewResult(serviceName, testName string, status model.Status, errorMessage *string, durationMS *int) (*Result, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("%w: service_name is required", ErrInvalidResult)
	}
	if len(serviceName) > MaxServiceNameLen {
		return nil, fmt.Errorf("%w: service_name exceeds %d characters", ErrInvalidResult, MaxServiceNameLen)
	}
	if testName == "" {
		return nil, fmt.Errorf("%w: test_name is required", ErrInvalidResult)
	}
	if len(testName) > MaxTestNameLen {
		return nil, fmt.Errorf("%w: test_name exceeds %d characters", ErrInvalidResult, MaxTestNameLen)
	}
	if !status.IsAStatus() {
		return nil, fmt.Errorf("%w: last_status must be one of %v", ErrInvalidResult, model.StatusStrings())
	}
	if status != model.StatusError {
		errorMessage = nil
	}

	return &Result{
		ServiceName:  serviceName,
		TestName:     testName,
		LastStatus:   status,
		ErrorMessage: errorMessage,
		DurationMS:   durationMS,
	}, nil
}

// ResultsStore abstracts storage of the latest health result per probe
type ResultsStore interface {
	// RecordResult upserts the result for (service_name, test_name).
	// A first result inserts a row; any later result for the same pair
	// overwrites last_status, error_message, duration_ms and refreshes
	// updated_at, leaving created_at untouched.
	// Returns ErrInvalidResult on validation failure.
	RecordResult(result *Result) (*Result, error)

	// ListByService returns the current results for one service,
	// most recently updated first.
	ListByService(serviceName string) ([]Result, error)

	// ListRecentlyUpdated returns results updated at or after since.
	ListRecentlyUpdated(since time.Time) ([]Result, error)

	// ListResults returns a page of results (optionally filtered by
	// service) together with the total match count.
	ListResults(serviceName string, limit, offset int) ([]Result, int, error)
}
