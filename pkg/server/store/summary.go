package store

import (
	"time"

	"github.com/doodlesbykumbi/healthwatch/pkg/model"
)

// ServiceSummary is the rolled-up health of one service
type ServiceSummary struct {
	ServiceName         string              `json:"service_name"`
	Status              model.ServiceStatus `json:"status"`
	LastSuccessfulCheck *time.Time          `json:"last_successful_check"`
	TotalTests          int                 `json:"total_tests"`
	PassingTests        int                 `json:"passing_tests"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// SummaryStore abstracts the per-service health rollup
type SummaryStore interface {
	// UpsertServiceHealth writes the rollup row for a service, keyed on
	// service_name.
	UpsertServiceHealth(summary *ServiceSummary) error

	// ListServiceHealth returns the rollup rows for all known services.
	ListServiceHealth() ([]ServiceSummary, error)
}
