// Package importclient uploads a bulk results file to a running service
// and checks what was stored.
package importclient

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/ekiden/pkg/logger"
)

// Run logs in, uploads cfg.File and compares the report with the stored
// results.
func Run(ctx context.Context, cfg *Config, stdin io.Reader) (Report, error) {
	log := logger.Named("import")
	if cfg.File == "" {
		return Report{}, ErrNoFile
	}

	var in io.Reader = stdin
	if cfg.File != "-" {
		f, err := os.Open(cfg.File)
		if err != nil {
			return Report{}, fmt.Errorf("open %s: %w", cfg.File, err)
		}
		defer f.Close()
		in = f
	}

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	sess, err := client.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return Report{}, err
	}
	log.Info(ctx, "signed in",
		logger.String("email", cfg.Email),
		logger.String("expires_at", sess.ExpiresAt.String()),
	)

	existing, err := client.Mine(ctx)
	if err != nil {
		return Report{}, err
	}

	report, err := client.Import(ctx, in)
	if err != nil {
		return Report{}, err
	}
	log.Info(ctx, "import finished",
		logger.Int("imported", report.Imported),
		logger.Int("skipped", report.Skipped),
	)
	for i, w := range report.Warnings {
		if !cfg.Verbose && i >= maxWarnings {
			log.Warn(ctx, "more rows skipped", logger.Int("count", len(report.Warnings)-i))
			break
		}
		log.Warn(ctx, "row skipped", logger.String("reason", w))
	}

	after, err := client.Mine(ctx)
	if err != nil {
		return report, err
	}
	if got := len(after) - len(existing); got != report.Imported {
		return report, fmt.Errorf("%w: reported %d, stored %d", ErrMismatch, report.Imported, got)
	}
	return report, nil
}
