package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"siteprompt-go-crawler/internal/analyzer"
	"siteprompt-go-crawler/internal/imagegen"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		maxPages int
		output   string
	)
	cmd := &cobra.Command{
		Use:   "generate <url>",
		Short: "Analyze a site and render an image from the derived prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			imgCfg := cfg.Image
			if imgCfg.Provider == "" {
				imgCfg.Provider = "openai"
			}
			gen, err := imagegen.New(imgCfg, ctx.log)
			if err != nil {
				return err
			}
			a, err := ctx.analyzer()
			if err != nil {
				return err
			}

			res, err := a.AnalyzeSite(context.Background(), args[0], analyzer.Options{MaxPages: maxPages})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "prompt: %s\n", res.PromptText)

			img, err := gen.Generate(context.Background(), res.PromptText, res.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, img.Data, 0o644); err != nil {
				return fmt.Errorf("write image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d bytes, cost $%.2f)\n", output, img.MIMEType, len(img.Data), img.Cost)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Page budget (0 uses the configured default)")
	cmd.Flags().StringVarP(&output, "output", "o", "image.png", "Image output path")
	return cmd
}
