package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"dev/bravebird/login-e2e/pkg/models"
)

// DefaultCaseTimeout bounds a single activity when the input does not say otherwise
const DefaultCaseTimeout = 5 * time.Minute

// LoginSuiteWorkflow runs the login cases one after another on a single
// browser session. Activities are never retried; the first fatal case error
// aborts the remaining cases.
func LoginSuiteWorkflow(ctx workflow.Context, input LoginSuiteInput) (models.Summary, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting login suite workflow", "runID", input.RunID, "cases", len(input.Cases))

	summary := models.Summary{RunID: input.RunID}

	// Register query handler for real-time progress
	err := workflow.SetQueryHandler(ctx, "getProgress", func() (models.Summary, error) {
		return summary, nil
	})
	if err != nil {
		logger.Error("Failed to register query handler", "error", err)
	}

	timeout := time.Duration(input.CaseTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultCaseTimeout
	}
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	if err := workflow.ExecuteActivity(ctx, "PrepareRunActivity").Get(ctx, nil); err != nil {
		return summary, err
	}

	var session BrowserSession
	if err := workflow.ExecuteActivity(ctx, "InitializeBrowserActivity").Get(ctx, &session); err != nil {
		return summary, err
	}

	defer func() {
		// Cleanup browser session even if the workflow was cancelled
		cleanupCtx, _ := workflow.NewDisconnectedContext(ctx)
		if err := workflow.ExecuteActivity(cleanupCtx, "CloseBrowserActivity", session.SessionID).Get(cleanupCtx, nil); err != nil {
			logger.Warn("Failed to close browser session", "sessionID", session.SessionID, "error", err)
		}
	}()

	for _, tc := range input.Cases {
		logger.Info("Running login case", "testCase", tc.Name)

		var result models.Result
		err := workflow.ExecuteActivity(ctx, "RunLoginCaseActivity", LoginCaseInput{
			SessionID: session.SessionID,
			RunID:     input.RunID,
			Case:      tc,
		}).Get(ctx, &result)
		if err != nil {
			logger.Error("Login suite aborted", "testCase", tc.Name, "error", err)
			return summary, err
		}

		summary.Add(result)
	}

	logger.Info("Workflow completed", "passed", summary.Passed, "failed", summary.Failed)
	return summary, nil
}

// LoginSuiteInput is the input of LoginSuiteWorkflow
type LoginSuiteInput struct {
	RunID              string            `json:"run_id"`
	Cases              []models.TestCase `json:"cases"`
	CaseTimeoutSeconds int               `json:"case_timeout_seconds,omitempty"`
}

// BrowserSession holds browser session information
type BrowserSession struct {
	SessionID string `json:"session_id"`
}

// LoginCaseInput is the input for running one login case
type LoginCaseInput struct {
	SessionID string          `json:"session_id"`
	RunID     string          `json:"run_id"`
	Case      models.TestCase `json:"case"`
}
