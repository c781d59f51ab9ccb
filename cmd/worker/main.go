package main

import (
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"dev/bravebird/login-e2e/pkg/browser"
	"dev/bravebird/login-e2e/pkg/config"
	"dev/bravebird/login-e2e/pkg/results"
	"dev/bravebird/login-e2e/pkg/temporal/activities"
	"dev/bravebird/login-e2e/pkg/temporal/workflows"
)

func main() {
	// Load configuration from environment
	cfg, err := config.FromEnv(getEnvOrDefault("ENV_FILE", config.DefaultEnvFile))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
		Logger:   tlog.NewStructuredLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer c.Close()

	// Result log shared by every run this worker executes
	sink, err := results.FromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to open result log: %v", err)
	}
	defer sink.Close()

	// Create activities
	acts := activities.NewActivities(cfg, browser.Launch, sink, os.Stdout)

	// One browser session per suite, cases run strictly in order
	w := worker.New(c, cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     1,
		MaxConcurrentWorkflowTaskExecutionSize: 10,
	})

	// Register workflows
	w.RegisterWorkflow(workflows.LoginSuiteWorkflow)

	// Register activities
	w.RegisterActivity(acts.PrepareRunActivity)
	w.RegisterActivity(acts.InitializeBrowserActivity)
	w.RegisterActivity(acts.RunLoginCaseActivity)
	w.RegisterActivity(acts.CloseBrowserActivity)

	log.Printf("Starting Temporal worker on task queue: %s", cfg.TaskQueue)
	log.Printf("Temporal host: %s", cfg.TemporalHost)
	log.Printf("Login page: %s", cfg.URL)

	// Start worker
	err = w.Run(worker.InterruptCh())
	if err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
