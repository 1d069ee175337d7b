package model

import "time"

// TestResult is the last-known outcome of a named health test for a service.
// There is exactly one row per (service_name, test_name) pair; every new
// result for the same pair overwrites the previous one in place.
type TestResult struct {
	ID           int       `gorm:"column:id;primaryKey"`
	ServiceName  string    `gorm:"column:service_name;not null"`
	TestName     string    `gorm:"column:test_name;not null"`
	LastStatus   Status    `gorm:"column:last_status;not null"`
	ErrorMessage *string   `gorm:"column:error_message"`
	DurationMS   *int      `gorm:"column:duration_ms"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TestResult) TableName() string {
	return "api_health_tests"
}
