package activities

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"dev/bravebird/login-e2e/pkg/browser"
	"dev/bravebird/login-e2e/pkg/config"
	"dev/bravebird/login-e2e/pkg/login"
	"dev/bravebird/login-e2e/pkg/models"
	"dev/bravebird/login-e2e/pkg/results"
	"dev/bravebird/login-e2e/pkg/temporal/workflows"
)

// ErrTypeCaseAborted marks a login case that ended the batch
const ErrTypeCaseAborted = "LoginCaseAborted"

// BrowserPool manages browser sessions
type BrowserPool struct {
	sessions map[string]*BrowserSessionData
	mu       sync.RWMutex
}

// BrowserSessionData holds data for a browser session
type BrowserSessionData struct {
	Driver    browser.Driver
	CreatedAt time.Time
}

// Activities holds activity implementations
type Activities struct {
	config *config.Config
	launch login.LaunchFunc
	sink   results.Sink
	out    io.Writer
	pool   *BrowserPool
}

// NewActivities creates new activities
func NewActivities(cfg *config.Config, launch login.LaunchFunc, sink results.Sink, out io.Writer) *Activities {
	return &Activities{
		config: cfg,
		launch: launch,
		sink:   sink,
		out:    out,
		pool:   &BrowserPool{sessions: make(map[string]*BrowserSessionData)},
	}
}

// PrepareRunActivity creates the screenshot directory and the result log header
func (a *Activities) PrepareRunActivity(ctx context.Context) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Preparing run", "screenshotDir", a.config.ScreenshotDir, "csv", a.config.CSVFile)

	return login.PrepareRun(ctx, a.config, a.sink)
}

// InitializeBrowserActivity launches a browser session
func (a *Activities) InitializeBrowserActivity(ctx context.Context) (workflows.BrowserSession, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Initializing browser session", "headless", a.config.Headless)

	driver, err := a.launch(ctx, login.LaunchOptions(a.config))
	if err != nil {
		return workflows.BrowserSession{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("%v: %v", login.ErrDriverStartup, err), "DriverStartup", err)
	}

	sessionID := uuid.New().String()
	a.pool.mu.Lock()
	a.pool.sessions[sessionID] = &BrowserSessionData{
		Driver:    driver,
		CreatedAt: time.Now(),
	}
	a.pool.mu.Unlock()

	logger.Info("Browser session created", "sessionID", sessionID)
	return workflows.BrowserSession{SessionID: sessionID}, nil
}

// RunLoginCaseActivity runs one login case on a pooled session
func (a *Activities) RunLoginCaseActivity(ctx context.Context, input workflows.LoginCaseInput) (models.Result, error) {
	logger := activity.GetLogger(ctx)

	a.pool.mu.RLock()
	session, ok := a.pool.sessions[input.SessionID]
	a.pool.mu.RUnlock()

	if !ok {
		return models.Result{}, temporal.NewNonRetryableApplicationError(
			"browser session not found: "+input.SessionID, ErrTypeCaseAborted, nil)
	}

	runner := &login.Runner{
		Driver: session.Driver,
		Config: a.config,
		Sink:   a.sink,
		Logger: logger,
		Out:    a.out,
		RunID:  input.RunID,
	}

	result, err := runner.Attempt(ctx, input.Case)
	if err != nil {
		return result, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("test case %s: %v", input.Case.Name, err), ErrTypeCaseAborted, err)
	}
	return result, nil
}

// CloseBrowserActivity closes a browser session
func (a *Activities) CloseBrowserActivity(ctx context.Context, sessionID string) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Closing browser session", "sessionID", sessionID)

	a.pool.mu.Lock()
	defer a.pool.mu.Unlock()

	session, ok := a.pool.sessions[sessionID]
	if !ok {
		return nil // Already closed
	}
	delete(a.pool.sessions, sessionID)

	if err := session.Driver.Close(); err != nil {
		logger.Warn("Failed to close browser", "sessionID", sessionID, "error", err)
	}
	return nil
}
