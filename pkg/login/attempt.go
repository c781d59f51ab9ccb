// Package login runs login attempts against a form and records the outcome.
package login

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.temporal.io/sdk/log"

	"dev/bravebird/login-e2e/pkg/browser"
	"dev/bravebird/login-e2e/pkg/config"
	"dev/bravebird/login-e2e/pkg/models"
	"dev/bravebird/login-e2e/pkg/results"
)

var (
	// ErrUsernameField means no username-like input became visible in time.
	// It aborts the whole batch.
	ErrUsernameField = errors.New("username field not found")
	// ErrPasswordField means no password input was on the page
	ErrPasswordField = errors.New("password field not found")
)

// Runner performs login attempts on one browser session
type Runner struct {
	Driver browser.Driver
	Config *config.Config
	Sink   results.Sink
	Logger log.Logger
	// Out receives the human readable per-case lines
	Out   io.Writer
	RunID string
	// Now defaults to time.Now
	Now func() time.Time
}

// Attempt runs one test case. Locally recovered failures (no login button,
// no dashboard) come back as a Failed result with a nil error; every other
// error is fatal for the batch and no row is written for the case.
func (r *Runner) Attempt(ctx context.Context, tc models.TestCase) (models.Result, error) {
	cfg := r.Config
	result := models.Result{
		RunID:     r.RunID,
		Timestamp: r.now(),
		TestCase:  tc.Name,
		Username:  tc.Username,
		Password:  tc.Password,
	}

	r.Logger.Info("Starting login attempt", "testCase", tc.Name, "url", cfg.URL)

	if err := r.Driver.Navigate(ctx, cfg.URL); err != nil {
		return result, fmt.Errorf("failed to load login page: %w", err)
	}

	userField, err := r.Driver.WaitVisible(ctx, UsernameXPath, cfg.WaitTimeout)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrUsernameField, err)
	}
	passField, err := r.Driver.Find(ctx, PasswordXPath)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrPasswordField, err)
	}

	if _, err := r.screenshot(ctx, tc, models.StageBefore); err != nil {
		return result, err
	}

	if err := fill(ctx, userField, tc.Username); err != nil {
		return result, fmt.Errorf("failed to enter username: %w", err)
	}
	if err := fill(ctx, passField, tc.Password); err != nil {
		return result, fmt.Errorf("failed to enter password: %w", err)
	}

	if _, err := r.screenshot(ctx, tc, models.StageEntered); err != nil {
		return result, err
	}

	terminal, msg, err := r.submit(ctx, tc)
	if err != nil {
		return result, err
	}

	result.Terminal = terminal
	result.Outcome = terminal.Outcome()
	result.ErrorMessage = msg
	if result.ScreenshotPath, err = r.screenshot(ctx, tc, terminal.Stage()); err != nil {
		return result, err
	}

	if err := r.Sink.Append(ctx, result); err != nil {
		return result, fmt.Errorf("failed to record result: %w", err)
	}

	r.Logger.Info("Login attempt finished", "testCase", tc.Name, "outcome", result.Outcome, "terminal", terminal)
	if terminal != models.TerminalButtonNotFound {
		r.report(result)
	}
	return result, nil
}

// submit clicks the login button and classifies what the page shows afterwards.
func (r *Runner) submit(ctx context.Context, tc models.TestCase) (models.Terminal, string, error) {
	cfg := r.Config

	button, err := r.Driver.WaitClickable(ctx, LoginButtonXPath, cfg.WaitTimeout)
	if err == nil {
		err = button.ClickScript(ctx)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		r.Logger.Warn("Login button not found", "testCase", tc.Name, "error", err)
		fmt.Fprintf(r.out(), "%s: Could not find login button ❌ %v\n", tc.Name, err)
		return models.TerminalButtonNotFound, models.ErrMsgButtonNotFound, nil
	}

	if err := sleep(ctx, cfg.SettleDelay); err != nil {
		return "", "", err
	}

	idx, el, err := r.Driver.WaitAny(ctx, cfg.WaitTimeout, DashboardXPath, ErrorBannerXPath)
	switch {
	case err == nil && idx == 0:
		return models.TerminalDashboardFound, "", nil
	case err == nil:
		return bannerText(ctx, el)
	case browser.IsMissing(err):
		// The banner may be on the page without being visible.
		banner, ferr := r.Driver.Find(ctx, ErrorBannerXPath)
		if ferr != nil {
			return models.TerminalAmbiguous, models.ErrMsgAmbiguous, nil
		}
		return bannerText(ctx, banner)
	default:
		return "", "", fmt.Errorf("failed waiting for login result: %w", err)
	}
}

func bannerText(ctx context.Context, el browser.Element) (models.Terminal, string, error) {
	text, err := el.Text(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		return models.TerminalAmbiguous, models.ErrMsgAmbiguous, nil
	}
	return models.TerminalErrorBannerFound, text, nil
}

func (r *Runner) screenshot(ctx context.Context, tc models.TestCase, stage models.Stage) (string, error) {
	path := r.Config.ScreenshotPath(tc.Name, stage)
	if err := r.Driver.Screenshot(ctx, path); err != nil {
		return "", fmt.Errorf("failed to capture %s screenshot: %w", stage, err)
	}
	return path, nil
}

func (r *Runner) report(res models.Result) {
	c := color.New(color.FgRed)
	if res.Outcome == models.OutcomeSuccess {
		c = color.New(color.FgGreen)
	}
	c.Fprintf(r.out(), "%s: %s\n", res.TestCase, res.Outcome)
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func fill(ctx context.Context, el browser.Element, text string) error {
	if err := el.Clear(ctx); err != nil {
		return err
	}
	return el.Type(ctx, text)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
