package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"dev/bravebird/login-e2e/pkg/models"
)

// Config holds everything a run needs. Nothing is read from package state,
// so tests can substitute any part of it.
type Config struct {
	// Target
	URL       string
	TestCases []models.TestCase

	// Output settings
	ScreenshotDir string
	CSVFile       string
	MySQLDSN      string

	// Browser settings
	BrowserBin  string
	Headless    bool
	WaitTimeout time.Duration
	SettleDelay time.Duration

	// Temporal settings
	TemporalHost string
	TaskQueue    string
}

// New creates a Config with defaults
func New() *Config {
	return &Config{
		URL:           DefaultURL,
		TestCases:     models.DefaultTestCases(DefaultUsername, DefaultPassword),
		ScreenshotDir: DefaultScreenshotDir,
		CSVFile:       DefaultCSVFile,
		WaitTimeout:   DefaultWaitTimeout,
		SettleDelay:   DefaultSettleDelay,
		TemporalHost:  DefaultTemporalHost,
		TaskQueue:     DefaultTaskQueue,
	}
}

// FromEnv loads envFile (if it exists) and builds a Config from the environment.
// Variables already set in the process environment win over the file.
func FromEnv(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := New()
	cfg.URL = getEnvOrDefault("LOGIN_URL", cfg.URL)
	cfg.TestCases = models.DefaultTestCases(
		getEnvOrDefault("LOGIN_USERNAME", DefaultUsername),
		getEnvOrDefault("LOGIN_PASSWORD", DefaultPassword),
	)
	cfg.ScreenshotDir = getEnvOrDefault("SCREENSHOT_DIR", cfg.ScreenshotDir)
	cfg.CSVFile = getEnvOrDefault("RESULTS_CSV", cfg.CSVFile)
	cfg.MySQLDSN = os.Getenv("RESULTS_MYSQL_DSN")
	cfg.BrowserBin = os.Getenv("CHROME_BIN")
	cfg.TemporalHost = getEnvOrDefault("TEMPORAL_HOST", cfg.TemporalHost)
	cfg.TaskQueue = getEnvOrDefault("TEMPORAL_TASK_QUEUE", cfg.TaskQueue)

	var err error
	if cfg.Headless, err = getEnvBool("HEADLESS", cfg.Headless); err != nil {
		return nil, err
	}
	if cfg.WaitTimeout, err = getEnvDuration("WAIT_TIMEOUT", cfg.WaitTimeout); err != nil {
		return nil, err
	}
	if cfg.SettleDelay, err = getEnvDuration("SETTLE_DELAY", cfg.SettleDelay); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Validate checks the config is usable for a run
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid login URL %q", c.URL)
	}
	if len(c.TestCases) == 0 {
		return errors.New("no test cases configured")
	}

	// Names key the screenshot files, so they must not collide.
	seen := make(map[string]bool, len(c.TestCases))
	for _, tc := range c.TestCases {
		if tc.Name == "" {
			return errors.New("test case with empty name")
		}
		if seen[tc.Name] {
			return fmt.Errorf("duplicate test case name %q", tc.Name)
		}
		seen[tc.Name] = true
	}

	if c.ScreenshotDir == "" {
		return errors.New("screenshot directory not set")
	}
	if c.CSVFile == "" {
		return errors.New("results CSV file not set")
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("wait timeout must be positive, got %s", c.WaitTimeout)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative, got %s", c.SettleDelay)
	}
	return nil
}

// ScreenshotPath returns the path of a test case screenshot for a stage
func (c *Config) ScreenshotPath(testName string, stage models.Stage) string {
	return filepath.Join(c.ScreenshotDir, models.ScreenshotName(testName, stage))
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return d, nil
}
