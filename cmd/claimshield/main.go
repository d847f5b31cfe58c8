package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimshield/claimshield/internal/client"
	"github.com/claimshield/claimshield/internal/config"
	"github.com/claimshield/claimshield/internal/logging"
	"github.com/claimshield/claimshield/internal/workflow"
)

const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 10
	ExitBusy       = 11
	ExitTransport  = 12
	ExitDecode     = 13
)

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func (e cliError) Unwrap() error { return e.err }

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitFailure)
	}
}

// newAnalyzer is a package-level variable for test injection.
var newAnalyzer = func(cfg config.Config) workflow.Analyzer {
	return client.New(cfg.BaseURL, time.Duration(cfg.Timeout))
}

type globalFlags struct {
	configPath string
	baseURL    string
	timeout    string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "claimshield",
		Short:         "ClaimShield fraud investigation client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", config.DefaultPath, "config file path")
	root.PersistentFlags().StringVar(&g.baseURL, "base-url", "", "analysis service base URL (overrides config)")
	root.PersistentFlags().StringVar(&g.timeout, "timeout", "", "request timeout, e.g. 90s (default none)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format (text|json)")

	load := func(cmd *cobra.Command) (config.Config, error) {
		cfg, err := config.Load(g.configPath)
		if err != nil {
			return config.Config{}, err
		}
		if g.baseURL != "" {
			cfg.BaseURL = g.baseURL
		}
		if g.timeout != "" {
			d, err := time.ParseDuration(g.timeout)
			if err != nil {
				return config.Config{}, fmt.Errorf("--timeout: %w", err)
			}
			cfg.Timeout = config.Duration(d)
		}
		if g.logLevel != "" {
			cfg.LogLevel = g.logLevel
		}
		if g.logFormat != "" {
			cfg.LogFormat = g.logFormat
		}
		if err := cfg.Normalize(); err != nil {
			return config.Config{}, err
		}
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return config.Config{}, err
		}
		logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())
		return cfg, nil
	}

	root.AddCommand(newInitCommand(&g))
	root.AddCommand(newInvestigateCommand(load))
	root.AddCommand(newConsoleCommand(load))
	root.AddCommand(newRenderCommand())
	root.AddCommand(newSchemaCommand())
	root.AddCommand(newMockCommand(load))
	return root
}

type configLoader func(cmd *cobra.Command) (config.Config, error)

func newInitCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default claimshield configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := g.configPath
			if fileExists(path) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
				return nil
			}
			if err := config.Write(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", path)
			return nil
		},
	}
}

// exitCode maps the workflow error taxonomy to process exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, workflow.ErrValidation):
		return ExitValidation
	case errors.Is(err, workflow.ErrBusy):
		return ExitBusy
	case errors.Is(err, client.ErrDecode):
		return ExitDecode
	case errors.Is(err, client.ErrTransport):
		return ExitTransport
	default:
		return ExitFailure
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
