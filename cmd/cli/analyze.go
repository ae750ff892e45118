package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"siteprompt-go-crawler/internal/analyzer"
	"siteprompt-go-crawler/internal/crawler"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		maxPages int
		detailed bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Crawl a site and print its analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.analyzer()
			if err != nil {
				return err
			}
			opts := analyzer.Options{Detailed: detailed, MaxPages: maxPages}
			if ctx.verbose {
				opts.Events = func(ev crawler.Event) {
					if ev.Type == crawler.EventPageFetched || ev.Type == crawler.EventPageFailed {
						fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s %s\n", ev.Visited, ev.Budget, ev.Type, ev.URL)
					}
				}
			}
			res, err := a.AnalyzeSite(context.Background(), args[0], opts)
			if err != nil {
				return err
			}
			if wantJSON(cmd, asJSON) {
				return writeJSON(cmd, res)
			}
			renderResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Page budget (0 uses the configured default)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include classification details, topics and pages")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON even on a terminal")
	return cmd
}
