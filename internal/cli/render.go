package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlbridge/pkg/convert"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// resolveFormat maps the configured output mode to a concrete format.
// "auto" picks tables on a terminal and plain text when piped.
func resolveFormat(mode string, w io.Writer) string {
	switch mode {
	case "", "auto":
		if isTerminal(w) {
			return "table"
		}
		return "text"
	default:
		return mode
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 120
}

// renderResult writes a conversion result. In text and table modes the
// converted SQL goes to out and everything else to errOut, so the SQL
// stays pipeable into a file or another tool.
func renderResult(out, errOut io.Writer, res *convert.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer func() { _ = enc.Close() }()
		return enc.Encode(res)
	default:
		_, _ = fmt.Fprintln(out, res.SQL)
		renderWarnings(errOut, res.Warnings, format)
		if len(res.AppliedRules) > 0 {
			_, _ = fmt.Fprintf(errOut, "\nApplied rules (%d):\n", len(res.AppliedRules))
			for _, r := range res.AppliedRules {
				_, _ = fmt.Fprintf(errOut, "  %s\n", r)
			}
		}
		if res.Complexity != nil {
			_, _ = fmt.Fprintf(errOut, "\nComplexity: %s (score %d)\n",
				res.Complexity.Difficulty(), res.Complexity.Score())
		}
		return nil
	}
}

// renderWarnings writes warnings either as a go-pretty table or one per
// line, depending on format.
func renderWarnings(w io.Writer, warns []core.Warning, format string) {
	if len(warns) == 0 {
		return
	}
	if format != "table" {
		for _, warn := range warns {
			_, _ = fmt.Fprintf(w, "%s [%s]: %s\n", warn.Severity, warn.Kind, warn.Message)
			if warn.Suggestion != "" {
				_, _ = fmt.Fprintf(w, "  suggestion: %s\n", warn.Suggestion)
			}
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetAllowedRowLength(terminalWidth(w))
	t.AppendHeader(table.Row{"Severity", "Kind", "Message", "Suggestion"})
	for _, warn := range warns {
		t.AppendRow(table.Row{warn.Severity, warn.Kind, warn.Message, warn.Suggestion})
	}
	t.Render()
}

// renderValidation writes standalone validation output.
func renderValidation(out io.Writer, warns []core.Warning, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"warnings": warns})
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer func() { _ = enc.Close() }()
		return enc.Encode(map[string]any{"warnings": warns})
	default:
		if len(warns) == 0 {
			_, _ = fmt.Fprintln(out, "No issues found.")
			return nil
		}
		renderWarnings(out, warns, format)
		return nil
	}
}
