package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dev/bravebird/login-e2e/pkg/config"
	"dev/bravebird/login-e2e/pkg/login"
)

var version = "dev"

func main() {
	cmds := &Commands{}

	rootCmd := &cobra.Command{
		Use:           "logintest",
		Short:         "End-to-end login form tests",
		Long:          `Runs the configured login cases against the admin login page, capturing a screenshot at every stage and appending one row per case to the CSV result log.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		// Running without a subcommand behaves like "run"
		RunE: cmds.Run,
	}
	rootCmd.PersistentFlags().StringVar(&cmds.EnvFile, "env-file", config.DefaultEnvFile, "Environment file to load before reading configuration")
	rootCmd.PersistentFlags().BoolVarP(&cmds.Verbose, "verbose", "v", false, "Log debug messages")

	cmds.Register(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if errors.Is(err, login.ErrDriverStartup) {
			fmt.Println(startupMessage(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// startupMessage renders a driver startup failure the way operators expect it
func startupMessage(err error) string {
	cause := strings.TrimPrefix(err.Error(), login.ErrDriverStartup.Error()+": ")
	return "ERROR: Unable to start browser driver. " + cause
}
