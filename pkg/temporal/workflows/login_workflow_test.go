package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"dev/bravebird/login-e2e/pkg/models"
)

// stubActivities registers activities under the names the workflow calls
type stubActivities struct {
	mu       sync.Mutex
	calls    []string
	initErr  error
	failCase string
}

func (s *stubActivities) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubActivities) register(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivityWithOptions(func(ctx context.Context) error {
		s.record("prepare")
		return nil
	}, activity.RegisterOptions{Name: "PrepareRunActivity"})

	env.RegisterActivityWithOptions(func(ctx context.Context) (BrowserSession, error) {
		s.record("init")
		if s.initErr != nil {
			return BrowserSession{}, s.initErr
		}
		return BrowserSession{SessionID: "session-1"}, nil
	}, activity.RegisterOptions{Name: "InitializeBrowserActivity"})

	env.RegisterActivityWithOptions(func(ctx context.Context, in LoginCaseInput) (models.Result, error) {
		s.record("case:" + in.Case.Name + "@" + in.SessionID)
		if in.Case.Name == s.failCase {
			return models.Result{}, temporal.NewNonRetryableApplicationError("username field not found", "LoginCaseAborted", nil)
		}
		outcome := models.OutcomeFailed
		if in.Case.Name == "valid_login" {
			outcome = models.OutcomeSuccess
		}
		return models.Result{RunID: in.RunID, TestCase: in.Case.Name, Outcome: outcome}, nil
	}, activity.RegisterOptions{Name: "RunLoginCaseActivity"})

	env.RegisterActivityWithOptions(func(ctx context.Context, sessionID string) error {
		s.record("close:" + sessionID)
		return nil
	}, activity.RegisterOptions{Name: "CloseBrowserActivity"})
}

func suiteInput() LoginSuiteInput {
	return LoginSuiteInput{RunID: "run-1", Cases: models.DefaultTestCases("admin", "secret")}
}

func TestLoginSuiteWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	stubs := &stubActivities{}
	stubs.register(env)

	env.ExecuteWorkflow(LoginSuiteWorkflow, suiteInput())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var summary models.Summary
	require.NoError(t, env.GetWorkflowResult(&summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, "empty_fields", summary.Results[2].TestCase)

	assert.Equal(t, []string{
		"prepare",
		"init",
		"case:valid_login@session-1",
		"case:invalid_login@session-1",
		"case:empty_fields@session-1",
		"close:session-1",
	}, stubs.calls)

	val, err := env.QueryWorkflow("getProgress")
	require.NoError(t, err)
	var progress models.Summary
	require.NoError(t, val.Get(&progress))
	assert.Len(t, progress.Results, 3)
}

func TestLoginSuiteWorkflow_CaseAbortsBatch(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	stubs := &stubActivities{failCase: "invalid_login"}
	stubs.register(env)

	env.ExecuteWorkflow(LoginSuiteWorkflow, suiteInput())

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "LoginCaseAborted", appErr.Type())

	// The remaining case is skipped but the browser is still closed.
	assert.Equal(t, []string{
		"prepare",
		"init",
		"case:valid_login@session-1",
		"case:invalid_login@session-1",
		"close:session-1",
	}, stubs.calls)
}

func TestLoginSuiteWorkflow_BrowserStartupFailure(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	stubs := &stubActivities{initErr: temporal.NewNonRetryableApplicationError("no browser found", "DriverStartup", nil)}
	stubs.register(env)

	env.ExecuteWorkflow(LoginSuiteWorkflow, suiteInput())

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, []string{"prepare", "init"}, stubs.calls)
}
