package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"siteprompt-go-crawler/internal/analyzer"
	"siteprompt-go-crawler/internal/ioformats"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		in          string
		out         string
		concurrency int
		detailed    bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every site in a CSV/NDJSON list and write NDJSON results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return fmt.Errorf("missing --input")
			}
			if concurrency <= 0 {
				concurrency = 1
			}
			targets, err := ioformats.ReadTargets(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			a, err := ctx.analyzer()
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			results := make([]ioformats.Record, len(targets))

			// bounded concurrency across sites; each site is crawled sequentially
			sem := make(chan struct{}, concurrency)
			done := make(chan int, len(targets))

			for i, t := range targets {
				i, t := i, t
				sem <- struct{}{} // acquire
				go func() {
					defer func() { <-sem; done <- i }()
					res, err := a.AnalyzeSite(context.Background(), t.URL, analyzer.Options{Detailed: detailed, MaxPages: t.MaxPages})
					if err != nil {
						results[i] = ioformats.Record{URL: t.URL, Error: err.Error()}
						return
					}
					results[i] = ioformats.Record{URL: t.URL, Result: res}
				}()
			}
			// wait
			for range targets {
				<-done
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if err := ioformats.WriteNDJSON(w, results); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "analyzed %d sites, %d failed\n", len(targets), failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "input", "", "Input file (csv with 'url' column, ndjson, or one url per line)")
	cmd.Flags().StringVar(&out, "output", "", "Output NDJSON file (default stdout)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Sites analyzed in parallel")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include classification details")
	return cmd
}
