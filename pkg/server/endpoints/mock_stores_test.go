package endpoints

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

// MockResultsStore implements store.ResultsStore for testing using testify/mock
type MockResultsStore struct {
	mock.Mock
}

func NewMockResultsStore() *MockResultsStore {
	return &MockResultsStore{}
}

func (m *MockResultsStore) RecordResult(result *store.Result) (*store.Result, error) {
	args := m.Called(result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Result), args.Error(1)
}

func (m *MockResultsStore) ListByService(serviceName string) ([]store.Result, error) {
	args := m.Called(serviceName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Result), args.Error(1)
}

func (m *MockResultsStore) ListRecentlyUpdated(since time.Time) ([]store.Result, error) {
	args := m.Called(since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Result), args.Error(1)
}

func (m *MockResultsStore) ListResults(serviceName string, limit, offset int) ([]store.Result, int, error) {
	args := m.Called(serviceName, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]store.Result), args.Int(1), args.Error(2)
}

// MockSummaryStore implements store.SummaryStore for testing using testify/mock
type MockSummaryStore struct {
	mock.Mock
}

func NewMockSummaryStore() *MockSummaryStore {
	return &MockSummaryStore{}
}

func (m *MockSummaryStore) UpsertServiceHealth(summary *store.ServiceSummary) error {
	args := m.Called(summary)
	return args.Error(0)
}

func (m *MockSummaryStore) ListServiceHealth() ([]store.ServiceSummary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.ServiceSummary), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity() error {
	args := m.Called()
	return args.Error(0)
}
