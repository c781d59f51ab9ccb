package config

import "time"

const (
	// DefaultURL is the login page under test
	DefaultURL = "https://app.hisabkitabnepal.com/admin/login"
	// DefaultUsername is the placeholder username of the valid_login case
	DefaultUsername = "your-username"
	// DefaultPassword is the placeholder password of the valid_login case
	DefaultPassword = "your-password"
	// DefaultScreenshotDir is where stage screenshots are written
	DefaultScreenshotDir = "./hisabkitab_screenshot"
	// DefaultCSVFile is the result log
	DefaultCSVFile = "./hisabkitab_login_results.csv"
	// DefaultWaitTimeout bounds every wait-for-element
	DefaultWaitTimeout = 15 * time.Second
	// DefaultSettleDelay is the pause after clicking the login button
	DefaultSettleDelay = 2 * time.Second
	// DefaultTemporalHost is the Temporal frontend address
	DefaultTemporalHost = "localhost:7233"
	// DefaultTaskQueue is the Temporal task queue served by the worker
	DefaultTaskQueue = "login-e2e"
	// DefaultEnvFile is loaded by FromEnv when present
	DefaultEnvFile = ".env"
)
