package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	client "github.com/goodhill-solutions/goodhill-go-client"
	"github.com/goodhill-solutions/goodhill-go-client/internal/cli"
	"github.com/goodhill-solutions/goodhill-go-client/internal/config"
)

// Injected at build time via ldflags.
var version = "dev"

const (
	ExitOK        = 0
	ExitGeneral   = 1
	ExitUsage     = 2
	ExitConfig    = 3
	ExitService   = 4
	ExitTransport = 5
	ExitInterrupt = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := cli.NewRootCmd(cli.DefaultEnv(), version)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupt
	case errors.Is(err, config.ErrAPIKeyMissing), errors.Is(err, config.ErrAPISecretMissing),
		errors.Is(err, config.ErrHostsMissing):
		return ExitConfig
	case client.IsServiceError(err):
		return ExitService
	case client.IsTransportError(err):
		return ExitTransport
	case errors.Is(err, cli.ErrInvalidParam), errors.Is(err, cli.ErrInvalidJSON), isCobraUsageError(err):
		return ExitUsage
	default:
		return ExitGeneral
	}
}

// isCobraUsageError matches the flag and argument errors cobra returns as
// plain strings.
func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "accepts ", "requires at least", "invalid argument", "flag needs an argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}

	return false
}
