package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"siteprompt-go-crawler/internal/models"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// wantJSON reports whether output should be JSON: forced by flag, or stdout
// is not a terminal.
func wantJSON(cmd *cobra.Command, forced bool) bool {
	if forced {
		return true
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

func renderResult(w io.Writer, res *models.SitePromptResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(res.URL)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft, WidthMax: 80},
	})
	tw.AppendRow(table.Row{"Industry", fmt.Sprintf("%s (%s)", res.Industry, res.Confidence)})
	tw.AppendRow(table.Row{"Content type", res.ContentType})
	tw.AppendRow(table.Row{"Themes", strings.Join(res.ThemeNames(), ", ")})
	tw.AppendRow(table.Row{"Tone", res.VisualStyle.Tone})
	tw.AppendRow(table.Row{"Atmosphere", strings.Join(res.VisualStyle.Atmosphere, ", ")})
	tw.AppendRow(table.Row{"Colors", strings.Join(res.VisualStyle.ColorHints, ", ")})
	tw.AppendRow(table.Row{"Pages", fmt.Sprintf("%d analyzed / %d found", res.PagesAnalyzed, res.PagesFound)})
	if res.Cached {
		tw.AppendRow(table.Row{"Cached", "yes"})
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"Prompt", res.PromptText})
	tw.Render()

	if len(res.Pages) > 0 {
		pt := table.NewWriter()
		pt.SetOutputMirror(w)
		pt.SetStyle(table.StyleRounded)
		pt.AppendHeader(table.Row{"#", "URL", "Title"})
		for i, p := range res.Pages {
			pt.AppendRow(table.Row{strconv.Itoa(i + 1), p.URL, p.Title})
		}
		pt.Render()
	}
	if len(res.Topics) > 0 {
		fmt.Fprintf(w, "Topics: %s\n", strings.Join(res.Topics, ", "))
	}
}
