package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
)

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			format := resolveFormat(cfg.Output, cmd.OutOrStdout())

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"dialects": dialect.All})
			case "table":
				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Dialect"})
				for _, d := range dialect.All {
					t.AppendRow(table.Row{d.String()})
				}
				t.Render()
				return nil
			default:
				for _, d := range dialect.All {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.String())
				}
				return nil
			}
		},
	}
}
