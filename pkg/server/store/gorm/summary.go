package gorm

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/healthwatch/pkg/model"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

// Ensure SummaryStore implements store.SummaryStore
var _ store.SummaryStore = (*SummaryStore)(nil)

// SummaryStore implements store.SummaryStore using GORM
type SummaryStore struct {
	db *gorm.DB
}

// NewSummaryStore creates a new SummaryStore
func NewSummaryStore(db *gorm.DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// UpsertServiceHealth writes the rollup row for a service, keyed on
// service_name. last_successful_check only moves forward: a run without one
// leaves the previous value in place.
func (s *SummaryStore) UpsertServiceHealth(summary *store.ServiceSummary) error {
	row := model.ServiceHealth{
		ServiceName:         summary.ServiceName,
		Status:              summary.Status,
		LastSuccessfulCheck: summary.LastSuccessfulCheck,
		TotalTests:          summary.TotalTests,
		PassingTests:        summary.PassingTests,
		UpdatedAt:           time.Now().UTC(),
	}

	columns := []string{"status", "total_tests", "passing_tests", "updated_at"}
	if summary.LastSuccessfulCheck != nil {
		columns = append(columns, "last_successful_check")
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "service_name"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&row).Error
}

// ListServiceHealth returns the rollup rows for all known services.
func (s *SummaryStore) ListServiceHealth() ([]store.ServiceSummary, error) {
	var rows []model.ServiceHealth
	err := s.db.Order("service_name").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]store.ServiceSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, store.ServiceSummary{
			ServiceName:         row.ServiceName,
			Status:              row.Status,
			LastSuccessfulCheck: row.LastSuccessfulCheck,
			TotalTests:          row.TotalTests,
			PassingTests:        row.PassingTests,
			UpdatedAt:           row.UpdatedAt,
		})
	}
	return summaries, nil
}
