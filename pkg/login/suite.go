package login

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.temporal.io/sdk/log"

	"dev/bravebird/login-e2e/pkg/browser"
	"dev/bravebird/login-e2e/pkg/config"
	"dev/bravebird/login-e2e/pkg/models"
	"dev/bravebird/login-e2e/pkg/results"
)

// ErrDriverStartup means the browser could not be launched. Nothing ran.
var ErrDriverStartup = errors.New("unable to start browser driver")

// LaunchFunc opens a browser session
type LaunchFunc func(ctx context.Context, opts browser.Options) (browser.Driver, error)

// Suite owns one browser session and runs every configured case through it
type Suite struct {
	Config *config.Config
	Launch LaunchFunc
	Sink   results.Sink
	Logger log.Logger
	Out    io.Writer
	// RunID tags every result; a new one is generated when empty
	RunID string
}

// PrepareRun creates the screenshot directory and readies the result log.
// Suite.Run performs the same two steps with the browser launch in between.
func PrepareRun(ctx context.Context, cfg *config.Config, sink results.Sink) error {
	if err := prepareScreenshotDir(cfg); err != nil {
		return err
	}
	return prepareSink(ctx, sink)
}

func prepareScreenshotDir(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.ScreenshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	return nil
}

func prepareSink(ctx context.Context, sink results.Sink) error {
	if err := sink.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare result log: %w", err)
	}
	return nil
}

// LaunchOptions returns the browser options for cfg
func LaunchOptions(cfg *config.Config) browser.Options {
	return browser.Options{Bin: cfg.BrowserBin, Headless: cfg.Headless}
}

// Run executes the cases in order. The browser is closed on every exit
// path, including a case aborting the batch.
func (s *Suite) Run(ctx context.Context) (models.Summary, error) {
	runID := s.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	summary := models.Summary{RunID: runID}

	if err := prepareScreenshotDir(s.Config); err != nil {
		return summary, err
	}

	driver, err := s.Launch(ctx, LaunchOptions(s.Config))
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrDriverStartup, err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			s.Logger.Warn("Failed to close browser", "runID", runID, "error", err)
		}
	}()

	if err := prepareSink(ctx, s.Sink); err != nil {
		return summary, err
	}

	runner := &Runner{
		Driver: driver,
		Config: s.Config,
		Sink:   s.Sink,
		Logger: s.Logger,
		Out:    s.Out,
		RunID:  runID,
	}

	s.Logger.Info("Starting login suite", "runID", runID, "cases", len(s.Config.TestCases))
	for _, tc := range s.Config.TestCases {
		result, err := runner.Attempt(ctx, tc)
		if err != nil {
			s.Logger.Error("Login suite aborted", "runID", runID, "testCase", tc.Name, "error", err)
			return summary, fmt.Errorf("test case %s: %w", tc.Name, err)
		}
		summary.Add(result)
	}

	s.Logger.Info("Login suite completed", "runID", runID, "passed", summary.Passed, "failed", summary.Failed)
	return summary, nil
}
