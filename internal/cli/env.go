package cli

import (
	"io"
	"os"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"

	client "github.com/goodhill-solutions/goodhill-go-client"
	"github.com/goodhill-solutions/goodhill-go-client/internal/config"
)

// Env holds injectable dependencies for CLI commands.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// NewClient builds the API client from the resolved configuration.
	NewClient func(cfg config.Config, logger client.RequestLogger) (*client.Client, error)
}

// DefaultEnv returns an Env wired to the process streams and environment.
func DefaultEnv() *Env {
	return &Env{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Getenv:    os.Getenv,
		NewClient: newClient,
	}
}

func newClient(cfg config.Config, logger client.RequestLogger) (*client.Client, error) {
	opts := []client.Option{client.WithRequestLogger(logger)}

	if cfg.CABundle != "" {
		opts = append(opts, client.WithCABundle(cfg.CABundle))
	}

	if cfg.Timeout > 0 {
		opts = append(opts, client.WithTimeout(cfg.Timeout))
	}

	return client.New(cfg.APIKey, cfg.APISecret, cfg.Hosts, opts...)
}

// newLogger returns an apex logger writing human readable lines to w.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	return &log.Logger{
		Handler: clihandler.New(w),
		Level:   level,
	}
}
