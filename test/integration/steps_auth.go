package integration

import (
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/healthwatch/pkg/server/middleware"
)

// registerAuthSteps registers the write-token step definitions
func (s *StepsContext) registerAuthSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I have a valid write token$`, s.iHaveAValidWriteToken)
	sc.Step(`^I have an expired write token$`, s.iHaveAnExpiredWriteToken)
	sc.Step(`^I have a write token signed with the wrong key$`, s.iHaveAWrongKeyWriteToken)
	sc.Step(`^I have no write token$`, s.iHaveNoWriteToken)
}

func (s *StepsContext) iHaveAValidWriteToken() error {
	auth := middleware.NewTokenAuthenticator([]byte(s.tc.WriteTokenKey))
	token, err := auth.IssueToken("integration", time.Hour)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	s.writeToken = token
	return nil
}

func (s *StepsContext) iHaveAnExpiredWriteToken() error {
	auth := middleware.NewTokenAuthenticator([]byte(s.tc.WriteTokenKey))
	token, err := auth.IssueToken("integration", -time.Minute)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	s.writeToken = token
	return nil
}

func (s *StepsContext) iHaveAWrongKeyWriteToken() error {
	auth := middleware.NewTokenAuthenticator([]byte("not-the-server-key"))
	token, err := auth.IssueToken("integration", time.Hour)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	s.writeToken = token
	return nil
}

func (s *StepsContext) iHaveNoWriteToken() error {
	s.writeToken = ""
	return nil
}
