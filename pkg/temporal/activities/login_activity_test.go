package activities

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"dev/bravebird/login-e2e/pkg/browser"
	"dev/bravebird/login-e2e/pkg/browser/browsertest"
	"dev/bravebird/login-e2e/pkg/config"
	"dev/bravebird/login-e2e/pkg/login"
	"dev/bravebird/login-e2e/pkg/models"
	"dev/bravebird/login-e2e/pkg/results"
	"dev/bravebird/login-e2e/pkg/temporal/workflows"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	cfg.URL = "http://login.test/admin/login"
	cfg.ScreenshotDir = filepath.Join(dir, "shots")
	cfg.CSVFile = filepath.Join(dir, "results.csv")
	cfg.SettleDelay = 0
	cfg.WaitTimeout = time.Second
	return cfg
}

func TestActivities_SessionLifecycle(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()

	cfg := testConfig(t)
	fake := browsertest.New(login.UsernameXPath, login.PasswordXPath, login.LoginButtonXPath)
	fake.OnClick = func(f *browsertest.Fake, _ string) { f.Set(login.DashboardXPath, "Dashboard") }
	var out bytes.Buffer

	acts := NewActivities(cfg, fake.Launcher(nil), results.NewCSVLog(cfg.CSVFile), &out)
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.PrepareRunActivity)
	require.NoError(t, err)
	assert.DirExists(t, cfg.ScreenshotDir)

	val, err := env.ExecuteActivity(acts.InitializeBrowserActivity)
	require.NoError(t, err)
	var session workflows.BrowserSession
	require.NoError(t, val.Get(&session))
	assert.NotEmpty(t, session.SessionID)

	val, err = env.ExecuteActivity(acts.RunLoginCaseActivity, workflows.LoginCaseInput{
		SessionID: session.SessionID,
		RunID:     "run-1",
		Case:      models.TestCase{Name: "valid_login", Username: "admin", Password: "secret"},
	})
	require.NoError(t, err)
	var result models.Result
	require.NoError(t, val.Get(&result))
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, models.OutcomeSuccess, result.Outcome)
	assert.Equal(t, cfg.ScreenshotPath("valid_login", models.StageSuccess), result.ScreenshotPath)
	assert.Equal(t, "valid_login: Success\n", out.String())

	rows, err := results.ReadAll(cfg.CSVFile)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = env.ExecuteActivity(acts.CloseBrowserActivity, session.SessionID)
	require.NoError(t, err)
	assert.True(t, fake.Closed)

	// Closing twice is fine.
	_, err = env.ExecuteActivity(acts.CloseBrowserActivity, session.SessionID)
	assert.NoError(t, err)
}

func TestActivities_CaseAbort(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()

	cfg := testConfig(t)
	fake := browsertest.New(login.PasswordXPath, login.LoginButtonXPath)
	acts := NewActivities(cfg, fake.Launcher(nil), results.NewCSVLog(cfg.CSVFile), nil)
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.InitializeBrowserActivity)
	require.NoError(t, err)
	var session workflows.BrowserSession
	require.NoError(t, val.Get(&session))

	_, err = env.ExecuteActivity(acts.RunLoginCaseActivity, workflows.LoginCaseInput{
		SessionID: session.SessionID,
		Case:      models.TestCase{Name: "invalid_login"},
	})
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeCaseAborted, appErr.Type())
	assert.True(t, appErr.NonRetryable())
	assert.Contains(t, err.Error(), "username field not found")
}

func TestActivities_UnknownSession(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()

	cfg := testConfig(t)
	acts := NewActivities(cfg, browsertest.New().Launcher(nil), results.NewCSVLog(cfg.CSVFile), nil)
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.RunLoginCaseActivity, workflows.LoginCaseInput{
		SessionID: "missing",
		Case:      models.TestCase{Name: "valid_login"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser session not found")
}

func TestActivities_DriverStartupFailure(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()

	cfg := testConfig(t)
	launch := func(context.Context, browser.Options) (browser.Driver, error) {
		return nil, errors.New("no browser found on the system path")
	}
	acts := NewActivities(cfg, launch, results.NewCSVLog(cfg.CSVFile), nil)
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.InitializeBrowserActivity)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to start browser driver")
}
