package gorm

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/healthwatch/pkg/model"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

var resultColumns = []string{
	"id", "service_name", "test_name", "last_status",
	"error_message", "duration_ms", "updated_at", "created_at",
}

func strPtr(s string) *string { return &s }
func numPtr(n int) *int       { return &n }

func TestRecordResult(t *testing.T) {
	now := time.Now().UTC()

	t.Run("upserts and returns the stored row", func(t *testing.T) {
		db, mock := newMockDB(t)
		resultsStore := NewResultsStore(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "api_health_tests" .+ ON CONFLICT \("service_name","test_name"\) DO UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		created := now.Add(-24 * time.Hour)
		mock.ExpectQuery(`SELECT \* FROM "api_health_tests" WHERE service_name = \$1 AND test_name = \$2`).
			WithArgs("billing", "health_check", 1).
			WillReturnRows(sqlmock.NewRows(resultColumns).
				AddRow(1, "billing", "health_check", "ERROR", "timeout", 250, now, created))

		recorded, err := resultsStore.RecordResult(&store.Result{
			ServiceName:  "billing",
			TestName:     "health_check",
			LastStatus:   model.StatusError,
			ErrorMessage: strPtr("timeout"),
			DurationMS:   numPtr(250),
		})
		require.NoError(t, err)

		assert.Equal(t, "billing", recorded.ServiceName)
		assert.Equal(t, model.StatusError, recorded.LastStatus)
		require.NotNil(t, recorded.ErrorMessage)
		assert.Equal(t, "timeout", *recorded.ErrorMessage)
		// created_at comes back from the existing row, not the insert
		assert.Equal(t, created, recorded.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects invalid input before touching the database", func(t *testing.T) {
		db, mock := newMockDB(t)
		resultsStore := NewResultsStore(db)

		_, err := resultsStore.RecordResult(&store.Result{
			ServiceName: "",
			TestName:    "health_check",
			LastStatus:  model.StatusOK,
		})
		assert.ErrorIs(t, err, store.ErrInvalidResult)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		resultsStore := NewResultsStore(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "api_health_tests"`).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := resultsStore.RecordResult(&store.Result{
			ServiceName: "billing",
			TestName:    "health_check",
			LastStatus:  model.StatusOK,
		})
		assert.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListByService(t *testing.T) {
	db, mock := newMockDB(t)
	resultsStore := NewResultsStore(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT \* FROM "api_health_tests" WHERE service_name = \$1 ORDER BY updated_at desc`).
		WithArgs("billing").
		WillReturnRows(sqlmock.NewRows(resultColumns).
			AddRow(2, "billing", "invoices", "ERROR", "timeout", 250, now, now).
			AddRow(1, "billing", "health_check", "OK", nil, 12, now.Add(-time.Minute), now))

	results, err := resultsStore.ListByService("billing")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "invoices", results[0].TestName)
	assert.Equal(t, model.StatusError, results[0].LastStatus)
	assert.Equal(t, "health_check", results[1].TestName)
	assert.Nil(t, results[1].ErrorMessage)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentlyUpdated(t *testing.T) {
	db, mock := newMockDB(t)
	resultsStore := NewResultsStore(db)

	now := time.Now().UTC()
	since := now.Add(-time.Hour)
	mock.ExpectQuery(`SELECT \* FROM "api_health_tests" WHERE updated_at >= \$1 ORDER BY updated_at desc`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows(resultColumns).
			AddRow(1, "billing", "health_check", "OK", nil, 12, now, now))

	results, err := resultsStore.ListRecentlyUpdated(since)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "billing", results[0].ServiceName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListResults(t *testing.T) {
	t.Run("unfiltered page with total", func(t *testing.T) {
		db, mock := newMockDB(t)
		resultsStore := NewResultsStore(db)

		now := time.Now().UTC()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "api_health_tests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
		mock.ExpectQuery(`SELECT \* FROM "api_health_tests" ORDER BY service_name, test_name LIMIT`).
			WillReturnRows(sqlmock.NewRows(resultColumns).
				AddRow(1, "billing", "health_check", "OK", nil, 12, now, now).
				AddRow(2, "billing", "invoices", "NA", nil, nil, now, now))

		results, total, err := resultsStore.ListResults("", 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		require.Len(t, results, 2)
		assert.Equal(t, model.StatusNA, results[1].LastStatus)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filtered by service", func(t *testing.T) {
		db, mock := newMockDB(t)
		resultsStore := NewResultsStore(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "api_health_tests" WHERE service_name = \$1`).
			WithArgs("search").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "api_health_tests" WHERE service_name = \$1 ORDER BY service_name, test_name LIMIT`).
			WillReturnRows(sqlmock.NewRows(resultColumns))

		results, total, err := resultsStore.ListResults("search", 100, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, results)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
