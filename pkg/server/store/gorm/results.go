package gorm

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/healthwatch/pkg/model"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

// Ensure ResultsStore implements store.ResultsStore
var _ store.ResultsStore = (*ResultsStore)(nil)

// ResultsStore implements store.ResultsStore using GORM
type ResultsStore struct {
	db *gorm.DB
}

// NewResultsStore creates a new ResultsStore
func NewResultsStore(db *gorm.DB) *ResultsStore {
	return &ResultsStore{db: db}
}

// RecordResult upserts a result keyed on (service_name, test_name). Conflict
// resolution happens inside Postgres, so concurrent writers for the same pair
// serialize there and the unique-pair invariant holds without app locking.
func (s *ResultsStore) RecordResult(result *store.Result) (*store.Result, error) {
	// Re-validate so that constraint violations are rejected here and never
	// reach the database as a partial write.
	result, err := store.NewResult(result.ServiceName, result.TestName, result.LastStatus, result.ErrorMessage, result.DurationMS)
	if err != nil {
		return nil, err
	}

	row := model.TestResult{
		ServiceName:  result.ServiceName,
		TestName:     result.TestName,
		LastStatus:   result.LastStatus,
		ErrorMessage: result.ErrorMessage,
		DurationMS:   result.DurationMS,
		UpdatedAt:    time.Now().UTC(),
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "service_name"}, {Name: "test_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_status", "error_message", "duration_ms", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	// Re-read to pick up created_at on the update path, where the insert
	// values are discarded in favor of the existing row.
	var saved model.TestResult
	err = s.db.Where("service_name = ? AND test_name = ?", result.ServiceName, result.TestName).First(&saved).Error
	if err != nil {
		return nil, err
	}

	return toStoreResult(&saved), nil
}

// ListByService returns the current results for one service, most recently
// updated first. Served by the idx_health_tests_service index.
func (s *ResultsStore) ListByService(serviceName string) ([]store.Result, error) {
	var rows []model.TestResult
	err := s.db.Where("service_name = ?", serviceName).Order("updated_at desc").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toStoreResults(rows), nil
}

// ListRecentlyUpdated returns results updated at or after since. Served by
// the idx_health_tests_updated index.
func (s *ResultsStore) ListRecentlyUpdated(since time.Time) ([]store.Result, error) {
	var rows []model.TestResult
	err := s.db.Where("updated_at >= ?", since).Order("updated_at desc").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toStoreResults(rows), nil
}

// ListResults returns a page of results plus the total match count.
func (s *ResultsStore) ListResults(serviceName string, limit, offset int) ([]store.Result, int, error) {
	query := s.db.Model(&model.TestResult{})
	if serviceName != "" {
		query = query.Where("service_name = ?", serviceName)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.TestResult
	err := query.Order("service_name, test_name").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return toStoreResults(rows), int(total), nil
}

func toStoreResult(row *model.TestResult) *store.Result {
	return &store.Result{
		ServiceName:  row.ServiceName,
		TestName:     row.TestName,
		LastStatus:   row.LastStatus,
		ErrorMessage: row.ErrorMessage,
		DurationMS:   row.DurationMS,
		UpdatedAt:    row.UpdatedAt,
		CreatedAt:    row.CreatedAt,
	}
}

func toStoreResults(rows []model.TestResult) []store.Result {
	results := make([]store.Result, 0, len(rows))
	for i := range rows {
		results = append(results, *toStoreResult(&rows[i]))
	}
	return results
}
