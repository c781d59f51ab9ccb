// Package results persists login attempt results.
package results

import (
	"context"
	"errors"
	"fmt"

	"dev/bravebird/login-e2e/pkg/config"
	"dev/bravebird/login-e2e/pkg/models"
)

// Sink is a durable result log
type Sink interface {
	// Prepare readies the log before the first case runs
	Prepare(ctx context.Context) error
	// Append records one completed result
	Append(ctx context.Context, r models.Result) error
	Close() error
}

// Multi fans results out to several sinks in order
type Multi []Sink

func (m Multi) Prepare(ctx context.Context) error {
	for _, s := range m {
		if err := s.Prepare(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Append(ctx context.Context, r models.Result) error {
	for _, s := range m {
		if err := s.Append(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig builds the sinks a run writes to: always the CSV log, plus
// MySQL when a DSN is configured.
func FromConfig(cfg *config.Config) (Sink, error) {
	sinks := Multi{NewCSVLog(cfg.CSVFile)}

	if cfg.MySQLDSN != "" {
		db, err := NewMySQLLog(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL result log: %w", err)
		}
		sinks = append(sinks, db)
	}

	return sinks, nil
}
