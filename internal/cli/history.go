package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/internal/state"
)

// NewHistoryCommand creates the history command group.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded conversions",
		Long: `List, show, and prune conversions recorded in the history database.

Conversions are recorded by the API server and by "convert --save".`,
	}
	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryPruneCommand())
	return cmd
}

func openHistory(cfg *Config) (*state.SQLiteStore, error) {
	store, err := state.Open(cfg.HistoryPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", cfg.HistoryPath, err)
	}
	return store, nil
}

func newHistoryListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent conversions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			format := resolveFormat(cfg.Output, cmd.OutOrStdout())
			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded.")
				return nil
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.SetAllowedRowLength(terminalWidth(cmd.OutOrStdout()))
			t.AppendHeader(table.Row{"ID", "Source", "Target", "Warnings", "Rules", "Elapsed", "When"})
			for _, e := range entries {
				t.AppendRow(table.Row{
					e.ID,
					e.Source,
					e.Target,
					len(e.Warnings),
					len(e.Rules),
					fmt.Sprintf("%dms", e.ElapsedMS),
					e.CreatedAt.Local().Format(time.DateTime),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recorded conversion in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entry, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			format := resolveFormat(cfg.Output, cmd.OutOrStdout())
			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entry)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "ID:      %s\n", entry.ID)
			_, _ = fmt.Fprintf(out, "From:    %s\n", entry.Source)
			_, _ = fmt.Fprintf(out, "To:      %s\n", entry.Target)
			_, _ = fmt.Fprintf(out, "When:    %s\n", entry.CreatedAt.Local().Format(time.DateTime))
			_, _ = fmt.Fprintf(out, "Elapsed: %dms\n", entry.ElapsedMS)
			_, _ = fmt.Fprintf(out, "\n-- Input\n%s\n", entry.InputSQL)
			_, _ = fmt.Fprintf(out, "\n-- Output\n%s\n", entry.OutputSQL)
			if len(entry.Warnings) > 0 {
				_, _ = fmt.Fprintln(out)
				renderWarnings(out, entry.Warnings, format)
			}
			if len(entry.Rules) > 0 {
				_, _ = fmt.Fprintf(out, "\nApplied rules (%d):\n", len(entry.Rules))
				for _, r := range entry.Rules {
					_, _ = fmt.Fprintf(out, "  %s\n", r)
				}
			}
			return nil
		},
	}
	return cmd
}

func newHistoryPruneCommand() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old conversions, keeping the newest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			removed, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d conversion(s), kept the newest %d.\n", removed, keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 100, "Number of newest conversions to keep")
	return cmd
}
