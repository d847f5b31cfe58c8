package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimshield/claimshield/internal/mockservice"
	"github.com/claimshield/claimshield/pkg/schema"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the analysis result JSON schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(schema.AnalysisResultSchema())
			return err
		},
	}
}

func newMockCommand(load configLoader) *cobra.Command {
	mock := &cobra.Command{
		Use:   "mock",
		Short: "Local stand-in for the analysis service",
	}
	var addr, mode string
	var delay time.Duration
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve canned verdicts on /analyze_claim",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := load(cmd); err != nil {
				return err
			}
			m := mockservice.Mode(mode)
			switch m {
			case mockservice.ModeOK, mockservice.ModeError, mockservice.ModeMalformed:
			default:
				return fmt.Errorf("unsupported mode %s", mode)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdown, baseURL, err := mockservice.Start(addr, mockservice.Options{Mode: m, Delay: delay})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mock analysis service listening on %s\n", baseURL)
			<-ctx.Done()

			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return shutdown(sctx)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	serve.Flags().StringVar(&mode, "mode", string(mockservice.ModeOK), "response mode (ok|error|malformed)")
	serve.Flags().DurationVar(&delay, "delay", 0, "artificial latency per analysis")
	mock.AddCommand(serve)
	return mock
}
