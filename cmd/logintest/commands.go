package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"dev/bravebird/login-e2e/pkg/browser"
	"dev/bravebird/login-e2e/pkg/config"
	"dev/bravebird/login-e2e/pkg/login"
	"dev/bravebird/login-e2e/pkg/models"
	"dev/bravebird/login-e2e/pkg/results"
	"dev/bravebird/login-e2e/pkg/temporal/workflows"
)

// Commands holds the CLI commands and their shared flags
type Commands struct {
	EnvFile string
	Verbose bool
	// ReportRunID selects one run from the MySQL log for report
	ReportRunID string
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command) {
	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the login cases in a local browser",
		Long:  "Launch a browser, run every login case in order and append the results to the CSV log",
		RunE:  c.Run,
	}
	rootCmd.AddCommand(runCmd)

	// Submit command
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Run the login cases on a Temporal worker",
		Long:  "Start the login suite workflow on the configured task queue and wait for its summary",
		RunE:  c.Submit,
	}
	rootCmd.AddCommand(submitCmd)

	// Report command
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the CSV result log",
		Long:  "Print the rows of the CSV result log as a table with a pass/fail tally. With --run, print one run from the MySQL result log instead.",
		RunE:  c.Report,
	}
	reportCmd.Flags().StringVar(&c.ReportRunID, "run", "", "Run id to read from the MySQL result log (needs RESULTS_MYSQL_DSN)")
	rootCmd.AddCommand(reportCmd)
}

func (c *Commands) logger() tlog.Logger {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return tlog.NewStructuredLogger(slog.New(handler))
}

// Run executes the suite against a locally launched browser
func (c *Commands) Run(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv(c.EnvFile)
	if err != nil {
		return err
	}

	sink, err := results.FromConfig(cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	suite := &login.Suite{
		Config: cfg,
		Launch: browser.Launch,
		Sink:   sink,
		Logger: c.logger(),
		Out:    cmd.OutOrStdout(),
	}

	_, err = suite.Run(cmd.Context())
	return err
}

// Submit starts the suite workflow and prints its summary
func (c *Commands) Submit(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv(c.EnvFile)
	if err != nil {
		return err
	}

	logger := c.logger()
	tc, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer tc.Close()

	runID := uuid.New().String()
	options := client.StartWorkflowOptions{
		ID:        "login-suite-" + runID,
		TaskQueue: cfg.TaskQueue,
	}
	input := workflows.LoginSuiteInput{
		RunID: runID,
		Cases: cfg.TestCases,
	}

	run, err := tc.ExecuteWorkflow(cmd.Context(), options, workflows.LoginSuiteWorkflow, input)
	if err != nil {
		return fmt.Errorf("failed to start workflow: %w", err)
	}
	logger.Info("Started login suite workflow", "workflowID", run.GetID(), "runID", run.GetRunID())

	var summary models.Summary
	if err := run.Get(cmd.Context(), &summary); err != nil {
		return fmt.Errorf("login suite failed: %w", err)
	}

	printSummary(cmd, summary)
	return nil
}

// Report prints the CSV result log
func (c *Commands) Report(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv(c.EnvFile)
	if err != nil {
		return err
	}

	if c.ReportRunID != "" {
		return c.reportRun(cmd, cfg)
	}

	rows, err := results.ReadAll(cfg.CSVFile)
	if err != nil {
		return err
	}
	return results.WriteReport(cmd.OutOrStdout(), rows)
}

// reportRun prints one run from the MySQL result log; the CSV log has no run ids
func (c *Commands) reportRun(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.MySQLDSN == "" {
		return fmt.Errorf("--run needs RESULTS_MYSQL_DSN: run ids are only recorded in the MySQL result log")
	}

	db, err := results.NewMySQLLog(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rs, err := db.ListRun(cmd.Context(), c.ReportRunID)
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		return fmt.Errorf("no results recorded for run %s", c.ReportRunID)
	}
	return results.WriteReport(cmd.OutOrStdout(), results.ReportRows(rs))
}

func printSummary(cmd *cobra.Command, summary models.Summary) {
	out := cmd.OutOrStdout()
	for _, r := range summary.Results {
		c := color.New(color.FgRed)
		if r.Outcome == models.OutcomeSuccess {
			c = color.New(color.FgGreen)
		}
		c.Fprintf(out, "%s: %s\n", r.TestCase, r.Outcome)
	}
	fmt.Fprintf(out, "\n%d passed, %d failed (run %s)\n", summary.Passed, summary.Failed, summary.RunID)
}
