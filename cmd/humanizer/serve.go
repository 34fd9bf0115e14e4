package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/prose-humanizer/internal/config"
	"github.com/jonathan/prose-humanizer/internal/server"
)

type serveOptions struct {
	port       int
	configPath string
	verbose    bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that exposes the transform, batch, stream and detect endpoints.

Run history and the seeded-result cache are enabled when DATABASE_URL is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.port, "port", defaultPort(), "Port to listen on (defaults to PORT env var or 8080)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.json file with request defaults")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline decisions")
	return cmd
}

func defaultPort() int {
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		return port
	}
	return 8080
}

func runServe(_ *cobra.Command, opts *serveOptions) error {
	cfg := config.Config{}
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = *loaded
	}
	databaseURL := cfg.DatabaseURL
	if env := os.Getenv("DATABASE_URL"); env != "" {
		databaseURL = env
	}

	srv, err := server.New(server.Config{
		Port:        opts.port,
		DatabaseURL: databaseURL,
		Concurrency: cfg.Concurrency,
		Defaults:    cfg.ToPipelineConfig(),
		Verbose:     opts.verbose || cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
