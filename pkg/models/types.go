package models

import (
	"fmt"
	"time"
)

// ==================== Test Case Types ====================

// TestCase is one configured credential pair plus the label used in logs
// and screenshot filenames.
type TestCase struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// DefaultTestCases returns the fixed list of cases run against the login page.
// Only the valid case takes its credentials from configuration.
func DefaultTestCases(validUsername, validPassword string) []TestCase {
	return []TestCase{
		{Name: "valid_login", Username: validUsername, Password: validPassword},
		{Name: "invalid_login", Username: "invalid_user", Password: "wrong_pass"},
		{Name: "empty_fields", Username: "", Password: ""},
	}
}

// ==================== Outcome Types ====================

// Outcome is the recorded result of a test case
type Outcome string

const (
	OutcomeSuccess Outcome = "Success"
	OutcomeFailed  Outcome = "Failed"
)

// Terminal is the state a login attempt ends in after the credentials were entered
type Terminal string

const (
	TerminalButtonNotFound   Terminal = "button_not_found"
	TerminalDashboardFound   Terminal = "dashboard_found"
	TerminalErrorBannerFound Terminal = "error_banner_found"
	TerminalAmbiguous        Terminal = "ambiguous"
)

// Outcome maps the terminal state to the recorded outcome.
func (t Terminal) Outcome() Outcome {
	if t == TerminalDashboardFound {
		return OutcomeSuccess
	}
	return OutcomeFailed
}

// Stage returns the screenshot stage captured for the terminal state.
func (t Terminal) Stage() Stage {
	switch t {
	case TerminalButtonNotFound:
		return StageNoButton
	case TerminalDashboardFound:
		return StageSuccess
	default:
		return StageFailed
	}
}

// Error messages recorded for locally recovered failures
const (
	ErrMsgButtonNotFound = "Login button not found"
	ErrMsgAmbiguous      = "No dashboard or error message found"
)

// ==================== Screenshot Types ====================

// Stage identifies the point of the flow a screenshot was taken at
type Stage string

const (
	StageBefore   Stage = "before"
	StageEntered  Stage = "entered"
	StageSuccess  Stage = "success"
	StageFailed   Stage = "failed"
	StageNoButton Stage = "no_button"
)

// ScreenshotName returns the file name for a test case screenshot.
// Reruns with the same test name overwrite the previous file.
func ScreenshotName(testName string, stage Stage) string {
	return fmt.Sprintf("%s_%s.png", testName, stage)
}

// ==================== Result Types ====================

// TimestampLayout is the format of the Timestamp column
const TimestampLayout = "2006-01-02 15:04:05"

// Result is the record appended to the result log for one completed test case
type Result struct {
	RunID          string    `json:"run_id"`
	Timestamp      time.Time `json:"timestamp"`
	TestCase       string    `json:"test_case"`
	Username       string    `json:"username"`
	Password       string    `json:"password"`
	Outcome        Outcome   `json:"outcome"`
	Terminal       Terminal  `json:"terminal"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	ScreenshotPath string    `json:"screenshot_path"`
}

// Row renders the result in CSV column order:
// Timestamp, Test Case, Username, Password, Result, Error Message, Screenshot.
func (r Result) Row() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.TestCase,
		r.Username,
		r.Password,
		string(r.Outcome),
		r.ErrorMessage,
		r.ScreenshotPath,
	}
}

// Summary aggregates the results of one batch run
type Summary struct {
	RunID   string   `json:"run_id"`
	Results []Result `json:"results"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
}

// Add records a completed result in the summary.
func (s *Summary) Add(r Result) {
	s.Results = append(s.Results, r)
	if r.Outcome == OutcomeSuccess {
		s.Passed++
	} else {
		s.Failed++
	}
}
