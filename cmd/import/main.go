package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/ekiden/internal/importclient"
	"github.com/okian/ekiden/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		email    = flag.String("email", "", "Member email")
		password = flag.String("password", os.Getenv("EKIDEN_PASSWORD"), "Member password")
		file     = flag.String("file", "", `Results file, "-" reads stdin`)
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Print every skipped row")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		importclient.ShowHelp()
		return
	}

	if err := logger.Init(logger.WithFormat(logger.FormatTint)); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &importclient.Config{
		BaseURL:  *baseURL,
		Email:    *email,
		Password: *password,
		File:     *file,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}

	if _, err := importclient.Run(ctx, cfg, os.Stdin); err != nil {
		logger.Get().Error(ctx, "import failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
