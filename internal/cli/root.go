// Package cli implements the goodhill command tree.
package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	client "github.com/goodhill-solutions/goodhill-go-client"
	"github.com/goodhill-solutions/goodhill-go-client/internal/config"
)

var (
	// ErrInvalidParam indicates a positional argument that is not key=value.
	ErrInvalidParam = errors.New("invalid parameter, expected key=value")

	// ErrInvalidJSON indicates the --json body is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON body")
)

type globalFlags struct {
	configPath string
	hosts      []string
	timeout    time.Duration
	verbose    bool
}

// NewRootCmd returns the goodhill root command with every subcommand.
func NewRootCmd(env *Env, version string) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "goodhill",
		Short: "Query the Goodhill parts catalog",
		Long: `Query the Goodhill parts catalog from the command line.

Credentials and hosts are read from ~/.config/goodhill/config.toml and
overridden by GOODHILL_API_KEY, GOODHILL_API_SECRET, GOODHILL_HOSTS
(comma separated), GOODHILL_CA_BUNDLE and GOODHILL_TIMEOUT. A .env file in the working
directory is loaded first.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file path")
	cmd.PersistentFlags().StringSliceVar(&flags.hosts, "host", nil, "host to query, in failover order (repeatable)")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "per-host request timeout")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	run := func(call func(*client.Client, *cobra.Command, []string) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			logger := newLogger(env.Stderr, flags.verbose)

			c, err := connect(env, flags, logger)
			if err != nil {
				return err
			}

			result, err := call(c, cmd, args)
			if err != nil {
				return err
			}

			return writeJSON(env.Stdout, result)
		}
	}

	cmd.AddCommand(
		isAliveCmd(run),
		searchCmd(run),
		categoriesCmd(run),
		categoryCmd(run),
		ancestryCmd(run),
		attributesCmd(run),
		manufacturersCmd(run),
		configCmd(env, flags),
	)

	return cmd
}

type runFunc func(func(*client.Client, *cobra.Command, []string) (any, error)) func(*cobra.Command, []string) error

func isAliveCmd(run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "isalive",
		Short: "Check that the service answers",
		Args:  cobra.NoArgs,
		RunE: run(func(c *client.Client, cmd *cobra.Command, _ []string) (any, error) {
			return c.IsAlive(cmd.Context())
		}),
	}
}

func searchCmd(run runFunc) *cobra.Command {
	var body string
	var useGet bool

	cmd := &cobra.Command{
		Use:   "search [key=value...]",
		Short: "Search parts",
		Long: `Search parts.

Settings are given as key=value pairs or as a raw JSON body with --json.
With --get the settings are sent as query parameters instead of a body.`,
		Example: `  goodhill search q=resistor limit=10
  goodhill search --json '{"q":"resistor","filters":{"tolerance":"1%"}}'
  goodhill search --get q=resistor`,
		RunE: run(func(c *client.Client, cmd *cobra.Command, args []string) (any, error) {
			params, err := parseParams(args)
			if err != nil {
				return nil, err
			}

			if useGet {
				if body != "" {
					return nil, fmt.Errorf("--json cannot be combined with --get")
				}
				return c.SearchGet(cmd.Context(), params)
			}

			if body != "" {
				if len(args) > 0 {
					return nil, fmt.Errorf("--json cannot be combined with key=value settings")
				}

				raw, err := parseJSONBody(body)
				if err != nil {
					return nil, err
				}
				return c.Search(cmd.Context(), raw)
			}

			return c.Search(cmd.Context(), flatten(params))
		}),
	}

	cmd.Flags().StringVar(&body, "json", "", "raw JSON search settings")
	cmd.Flags().BoolVar(&useGet, "get", false, "send settings as query parameters")

	return cmd
}

func categoriesCmd(run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: run(func(c *client.Client, cmd *cobra.Command, _ []string) (any, error) {
			return c.Categories(cmd.Context())
		}),
	}
}

func categoryCmd(run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "category <id>",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(c *client.Client, cmd *cobra.Command, args []string) (any, error) {
			return c.Category(cmd.Context(), args[0])
		}),
	}
}

func ancestryCmd(run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "ancestry <id>",
		Short: "Show a category and its ancestors, leaf first",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(c *client.Client, cmd *cobra.Command, args []string) (any, error) {
			records, err := c.CategoryAncestry(cmd.Context(), args[0])
			if err != nil {
				return nil, err
			}
			return ancestryOutput(records), nil
		}),
	}
}

func attributesCmd(run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "attributes [key=value...]",
		Short:   "List attributes",
		Example: `  goodhill attributes category_id=3`,
		RunE: run(func(c *client.Client, cmd *cobra.Command, args []string) (any, error) {
			params, err := parseParams(args)
			if err != nil {
				return nil, err
			}
			return c.Attributes(cmd.Context(), params)
		}),
	}
}

func manufacturersCmd(run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "manufacturers",
		Short: "List manufacturers",
		Args:  cobra.NoArgs,
		RunE: run(func(c *client.Client, cmd *cobra.Command, _ []string) (any, error) {
			return c.Manufacturers(cmd.Context())
		}),
	}
}

func configCmd(env *Env, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(env, flags)
			if err != nil {
				return err
			}

			return writeJSON(env.Stdout, configOutput(cfg))
		},
	})

	return cmd
}

// connect resolves the configuration and builds the client.
func connect(env *Env, flags *globalFlags, logger *log.Logger) (*client.Client, error) {
	cfg, err := loadConfig(env, flags)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Path != "" {
		logger.Debugf("Read config from %s", cfg.Path)
	}
	logger.Debugf("Using hosts %s", strings.Join(cfg.Hosts, ", "))

	c, err := env.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return c, nil
}

func loadConfig(env *Env, flags *globalFlags) (config.Config, error) {
	cfg, err := config.LoadWithEnv(flags.configPath, env.Getenv)
	if err != nil {
		return config.Config{}, err
	}

	if len(flags.hosts) > 0 {
		cfg.Hosts = flags.hosts
	}

	if flags.timeout > 0 {
		cfg.Timeout = flags.timeout
	}

	return cfg, nil
}

// parseParams turns key=value arguments into query values. Repeated keys
// keep every value.
func parseParams(args []string) (url.Values, error) {
	params := url.Values{}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%q: %w", arg, ErrInvalidParam)
		}
		params.Add(strings.TrimSpace(key), value)
	}

	return params, nil
}

// flatten converts query values to a JSON object. Keys with several values
// become arrays.
func flatten(params url.Values) map[string]any {
	body := make(map[string]any, len(params))

	for key, values := range params {
		if len(values) == 1 {
			body[key] = values[0]
			continue
		}
		body[key] = values
	}

	return body
}
