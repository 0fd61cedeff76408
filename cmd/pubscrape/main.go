package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pubscrape"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:          "pubscrape",
		Short:        "Serve a directory of HTML blog posts as a JSON API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yml if present)")

	loadConfig := func() (pubscrape.SiteConfig, error) {
		cfg, err := pubscrape.LoadConfig(configFile)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	var withContent bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Print every post as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := pubscrape.NewStore(cfg, pubscrape.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr))
			posts, err := store.ListPosts(cmd.Context())
			if err != nil {
				return err
			}
			if !withContent {
				for i := range posts {
					posts[i].Content = ""
				}
			}
			return printJSON(cmd, posts)
		},
	}
	list.Flags().BoolVar(&withContent, "content", false, "include content fragments")

	categories := &cobra.Command{
		Use:   "categories",
		Short: "Print the categories used by current posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := pubscrape.NewStore(cfg, pubscrape.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr))
			cats, err := store.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, cats)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the pubscrape version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pubscrape %s\n", version)
		},
	}

	root.AddCommand(serve, list, categories, versionCmd)
	return root
}

func runServe(parent context.Context, cfg pubscrape.SiteConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := pubscrape.New(cfg)
	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	select {
	case err := <-errCh:
		app.Close()
		return err
	case <-ctx.Done():
	}

	app.Log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
