package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"siteprompt-go-crawler/internal/analyzer"
	"siteprompt-go-crawler/internal/config"
	"siteprompt-go-crawler/internal/kvstore"
	"siteprompt-go-crawler/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// commandContext lazily loads config and builds the shared pipeline.
type commandContext struct {
	configPath string
	verbose    bool

	cfg   *config.Config
	log   *logger.Logger
	store kvstore.Store
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	_ = godotenv.Load()
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	c.cfg = cfg
	c.log = logger.NewWithOptions(logger.Options{Level: level, Structured: cfg.Logging.Structured, Output: os.Stderr})
	return cfg, nil
}

func (c *commandContext) analyzer() (*analyzer.Analyzer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if c.store == nil {
		store, err := kvstore.Open(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		c.store = store
	}
	return analyzer.FromConfig(*cfg, c.store, c.log), nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
	}
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "siteprompt",
		Short:         "Crawl a website and derive an image-generation prompt",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", os.Getenv("SITEPROMPT_CONFIG"), "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log crawl progress to stderr")

	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newGenerateCommand(ctx))
	return rootCmd
}
