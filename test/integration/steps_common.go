package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	writeToken   string
	createdAt    map[string]time.Time
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:        tc,
		createdAt: make(map[string]time.Time),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a healthwatch server is running$`, s.aHealthwatchServerIsRunning)
	sc.Step(`^no test results exist$`, s.noTestResultsExist)

	// Recording steps
	sc.Step(`^I submit a result for service "([^"]*)" test "([^"]*)" with status "([^"]*)"$`, s.iSubmitAResult)
	sc.Step(`^I submit a result for service "([^"]*)" test "([^"]*)" with status "([^"]*)" and error "([^"]*)"$`, s.iSubmitAResultWithError)
	sc.Step(`^I submit the raw result payload:$`, s.iSubmitRawPayload)

	// Listing steps
	sc.Step(`^I list the current test results$`, s.iListCurrentResults)
	sc.Step(`^I list the results for service "([^"]*)"$`, s.iListResultsForService)
	sc.Step(`^I list results updated in the last minute$`, s.iListRecentResults)
	sc.Step(`^I list results updated after one hour from now$`, s.iListFutureResults)
	sc.Step(`^I request the dashboard$`, s.iRequestDashboard)
	sc.Step(`^I request the service summaries$`, s.iRequestServiceSummaries)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should contain (\d+) results?$`, s.theResponseShouldContainResults)
	sc.Step(`^the response body should contain "([^"]*)"$`, s.theResponseBodyShouldContain)
	sc.Step(`^the dashboard should mark service "([^"]*)" as "([^"]*)"$`, s.theDashboardShouldMarkService)

	// Database steps
	sc.Step(`^the service "([^"]*)" has a recorded summary with status "([^"]*)"$`, s.serviceHasRecordedSummary)
	sc.Step(`^there should be exactly one row for service "([^"]*)" test "([^"]*)"$`, s.thereShouldBeExactlyOneRow)
	sc.Step(`^the stored result for service "([^"]*)" test "([^"]*)" should have status "([^"]*)"$`, s.theStoredResultShouldHaveStatus)
	sc.Step(`^the stored result for service "([^"]*)" test "([^"]*)" should have error "([^"]*)"$`, s.theStoredResultShouldHaveError)
	sc.Step(`^I remember the created timestamp for service "([^"]*)" test "([^"]*)"$`, s.iRememberCreatedTimestamp)
	sc.Step(`^the created timestamp for service "([^"]*)" test "([^"]*)" should be unchanged$`, s.createdTimestampShouldBeUnchanged)

	s.registerAuthSteps(sc)
}

// Background steps

func (s *StepsContext) aHealthwatchServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) noTestResultsExist() error {
	if err := s.tc.DB.Exec(`TRUNCATE api_health_tests`).Error; err != nil {
		return err
	}
	return s.tc.DB.Exec(`TRUNCATE api_health_checks`).Error
}

// Recording steps

func (s *StepsContext) iSubmitAResult(serviceName, testName, status string) error {
	payload := map[string]interface{}{
		"service_name": serviceName,
		"test_name":    testName,
		"last_status":  status,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.postResult(body)
}

func (s *StepsContext) iSubmitAResultWithError(serviceName, testName, status, errorMessage string) error {
	payload := map[string]interface{}{
		"service_name":  serviceName,
		"test_name":     testName,
		"last_status":   status,
		"error_message": errorMessage,
		"duration_ms":   42,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.postResult(body)
}

func (s *StepsContext) iSubmitRawPayload(payload *godog.DocString) error {
	return s.postResult([]byte(payload.Content))
}

func (s *StepsContext) postResult(body []byte) error {
	req, err := http.NewRequest("POST", s.tc.ServerURL+"/health/tests", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.writeToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.writeToken)
	}
	return s.doRequest(req)
}

// Listing steps

func (s *StepsContext) iListCurrentResults() error {
	return s.get("/health/tests")
}

func (s *StepsContext) iListResultsForService(serviceName string) error {
	return s.get("/health/services/" + serviceName + "/tests")
}

func (s *StepsContext) iListRecentResults() error {
	since := time.Now().UTC().Add(-time.Minute).Format(time.RFC3339)
	return s.get("/health/tests/recent?since=" + since)
}

func (s *StepsContext) iListFutureResults() error {
	since := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	return s.get("/health/tests/recent?since=" + since)
}

func (s *StepsContext) iRequestDashboard() error {
	return s.get("/health/dashboard")
}

func (s *StepsContext) iRequestServiceSummaries() error {
	return s.get("/health/services")
}

func (s *StepsContext) get(path string) error {
	req, err := http.NewRequest("GET", s.tc.ServerURL+path, nil)
	if err != nil {
		return err
	}
	return s.doRequest(req)
}

func (s *StepsContext) doRequest(req *http.Request) error {
	var err error
	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseShouldContainResults(expected int) error {
	var listing struct {
		Results []json.RawMessage `json:"results"`
		Total   int               `json:"total"`
	}
	if err := json.Unmarshal(s.responseBody, &listing); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if listing.Total != expected {
		return fmt.Errorf("expected total %d, got %d: %s", expected, listing.Total, string(s.responseBody))
	}
	if len(listing.Results) != expected {
		return fmt.Errorf("expected %d results, got %d", expected, len(listing.Results))
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldContain(expected string) error {
	if !strings.Contains(string(s.responseBody), expected) {
		return fmt.Errorf("expected body to contain %q, got %q", expected, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theDashboardShouldMarkService(serviceName, expectedStatus string) error {
	var dashboard struct {
		Services []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"services"`
	}
	if err := json.Unmarshal(s.responseBody, &dashboard); err != nil {
		return fmt.Errorf("failed to parse dashboard: %w", err)
	}

	for _, svc := range dashboard.Services {
		if svc.Name == serviceName {
			if svc.Status != expectedStatus {
				return fmt.Errorf("expected service %s to be %s, got %s", serviceName, expectedStatus, svc.Status)
			}
			return nil
		}
	}
	return fmt.Errorf("service %s not found in dashboard: %s", serviceName, string(s.responseBody))
}

// Database steps

func (s *StepsContext) serviceHasRecordedSummary(serviceName, status string) error {
	return s.tc.DB.Exec(`
		INSERT INTO api_health_checks (service_name, status, total_tests, passing_tests)
		VALUES (?, ?, 1, 1)
		ON CONFLICT (service_name) DO UPDATE SET status = EXCLUDED.status
	`, serviceName, status).Error
}

func (s *StepsContext) thereShouldBeExactlyOneRow(serviceName, testName string) error {
	var count int64
	err := s.tc.DB.Raw(
		`SELECT COUNT(*) FROM api_health_tests WHERE service_name = ? AND test_name = ?`,
		serviceName, testName,
	).Scan(&count).Error
	if err != nil {
		return err
	}
	if count != 1 {
		return fmt.Errorf("expected exactly one row for %s/%s, got %d", serviceName, testName, count)
	}
	return nil
}

func (s *StepsContext) theStoredResultShouldHaveStatus(serviceName, testName, expectedStatus string) error {
	var status string
	err := s.tc.DB.Raw(
		`SELECT last_status FROM api_health_tests WHERE service_name = ? AND test_name = ?`,
		serviceName, testName,
	).Scan(&status).Error
	if err != nil {
		return err
	}
	if status != expectedStatus {
		return fmt.Errorf("expected status %s for %s/%s, got %s", expectedStatus, serviceName, testName, status)
	}
	return nil
}

func (s *StepsContext) theStoredResultShouldHaveError(serviceName, testName, expectedError string) error {
	var errorMessage sql.NullString
	err := s.tc.DB.Raw(
		`SELECT error_message FROM api_health_tests WHERE service_name = ? AND test_name = ?`,
		serviceName, testName,
	).Scan(&errorMessage).Error
	if err != nil {
		return err
	}
	if !errorMessage.Valid {
		return fmt.Errorf("expected error %q for %s/%s, got NULL", expectedError, serviceName, testName)
	}
	if errorMessage.String != expectedError {
		return fmt.Errorf("expected error %q for %s/%s, got %q", expectedError, serviceName, testName, errorMessage.String)
	}
	return nil
}

func (s *StepsContext) iRememberCreatedTimestamp(serviceName, testName string) error {
	var createdAt time.Time
	err := s.tc.DB.Raw(
		`SELECT created_at FROM api_health_tests WHERE service_name = ? AND test_name = ?`,
		serviceName, testName,
	).Scan(&createdAt).Error
	if err != nil {
		return err
	}
	s.createdAt[serviceName+"/"+testName] = createdAt
	return nil
}

func (s *StepsContext) createdTimestampShouldBeUnchanged(serviceName, testName string) error {
	remembered, ok := s.createdAt[serviceName+"/"+testName]
	if !ok {
		return fmt.Errorf("no remembered created timestamp for %s/%s", serviceName, testName)
	}

	var createdAt time.Time
	err := s.tc.DB.Raw(
		`SELECT created_at FROM api_health_tests WHERE service_name = ? AND test_name = ?`,
		serviceName, testName,
	).Scan(&createdAt).Error
	if err != nil {
		return err
	}
	if !createdAt.Equal(remembered) {
		return fmt.Errorf("created_at changed for %s/%s: was %v, now %v", serviceName, testName, remembered, createdAt)
	}
	return nil
}
