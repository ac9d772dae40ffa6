package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blog_ai_editor/config"
	"blog_ai_editor/logging"
	"blog_ai_editor/posts"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "blog-ai-editor",
	Short: "AI writing assistant for the blog editor",
	Long: `blog-ai-editor runs the AI transformation endpoint and the posts API, and drives the
editor's AI toolbar from the terminal against stored posts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file (yaml, toml or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assistCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(postsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime reads the configuration and builds the logger every command
// shares. The caller syncs the logger.
func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, File: cfg.Log.File, JSON: cfg.Log.JSON})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// openStore opens the configured posts repository. release closes it.
func openStore(cfg config.Config) (repo posts.Repository, release func(), err error) {
	repo, err = posts.Open(cfg.Store.Driver, cfg.Store.Dir, cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	release = func() {}
	if c, ok := repo.(io.Closer); ok {
		release = func() { _ = c.Close() }
	}
	return repo, release, nil
}
