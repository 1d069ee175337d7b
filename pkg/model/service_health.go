package model

import "time"

// ServiceStatus is the rolled-up health of a whole service.
type ServiceStatus string

const (
	ServiceOK       ServiceStatus = "OK"
	ServiceDegraded ServiceStatus = "DEGRADED"
	ServiceDown     ServiceStatus = "DOWN"
)

// ServiceHealth is the per-service summary row derived from the individual
// test results: how many tests exist, how many pass, and when the service
// last passed all of them.
type ServiceHealth struct {
	ID                  int           `gorm:"column:id;primaryKey"`
	ServiceName         string        `gorm:"column:service_name;not null"`
	Status              ServiceStatus `gorm:"column:status;not null"`
	LastSuccessfulCheck *time.Time    `gorm:"column:last_successful_check"`
	TotalTests          int           `gorm:"column:total_tests"`
	PassingTests        int           `gorm:"column:passing_tests"`
	UpdatedAt           time.Time     `gorm:"column:updated_at"`
}

func (ServiceHealth) TableName() string {
	return "api_health_checks"
}
