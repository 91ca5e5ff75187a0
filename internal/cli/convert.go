package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/internal/state"
	"github.com/leapstack-labs/sqlbridge/pkg/convert"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	From  string // Source dialect
	To    string // Target dialect
	Out   string // Output file (empty for stdout)
	Watch bool   // Re-convert on file change
	Save  bool   // Record the conversion in the history database
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert SQL between dialects",
		Long: `Convert a SQL script from one dialect to another.

Reads from the given file, or from stdin when no file is provided. The
converted SQL is written to stdout (or --out); warnings and applied rules
go to stderr so the SQL stays pipeable.`,
		Example: `  # Convert a file from Oracle to PostgreSQL
  sqlbridge convert --from oracle --to postgres schema.sql

  # Convert from stdin and write to a file
  cat query.sql | sqlbridge convert --from mysql --to oracle --out query_ora.sql

  # Re-convert whenever the file changes
  sqlbridge convert --from oracle --to mysql --watch schema.sql --out schema_my.sql

  # Record the conversion in the history database
  sqlbridge convert --from oracle --to postgres --save schema.sql`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())
			log := getLogger(cmd.Context())

			if _, err := dialect.Parse(opts.From); err != nil {
				return err
			}
			if _, err := dialect.Parse(opts.To); err != nil {
				return err
			}

			if opts.Watch {
				if len(args) == 0 {
					return fmt.Errorf("--watch requires a file argument")
				}
				return watchConvert(cmd, args[0], opts, cfg, log)
			}

			sql, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return runConvert(cmd, sql, opts, cfg)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Source dialect (oracle|mysql|postgres)")
	cmd.Flags().StringVar(&opts.To, "to", "", "Target dialect (oracle|mysql|postgres)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write converted SQL to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-convert the input file on change")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Record the conversion in the history database")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runConvert(cmd *cobra.Command, sql string, opts *ConvertOptions, cfg *Config) error {
	src, _ := dialect.Parse(opts.From)
	tgt, _ := dialect.Parse(opts.To)

	engine := convert.New(convert.Config{
		Logger:  getLogger(cmd.Context()),
		Workers: cfg.Workers,
	})
	ruleCfg := core.ConfigForProfile(core.Profile(cfg.Profile))

	res, err := engine.Convert(cmd.Context(), convert.Request{
		SQL:    sql,
		Source: src,
		Target: tgt,
		Config: &ruleCfg,
	})
	if err != nil {
		return err
	}

	if opts.Save {
		if err := saveHistory(cmd.Context(), cfg, src.String(), tgt.String(), sql, res); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, []byte(res.SQL), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.Out, err)
		}
		renderWarnings(cmd.ErrOrStderr(), res.Warnings, resolveFormat(cfg.Output, cmd.ErrOrStderr()))
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d warnings, %d rules applied)\n",
			opts.Out, len(res.Warnings), len(res.AppliedRules))
		return nil
	}

	format := resolveFormat(cfg.Output, cmd.OutOrStdout())
	return renderResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, format)
}

func saveHistory(ctx context.Context, cfg *Config, src, tgt, input string, res *convert.Result) error {
	if dir := filepath.Dir(cfg.HistoryPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	store, err := state.Open(cfg.HistoryPath, nil)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entry := state.EntryFromResult(src, tgt, input, res.SQL,
		res.Warnings, res.AppliedRules, res.Elapsed, res.ID.String())
	return store.Save(ctx, entry)
}

// watchConvert re-runs the conversion whenever path changes. It watches the
// parent directory because editors commonly replace files on save.
func watchConvert(cmd *cobra.Command, path string, opts *ConvertOptions, cfg *Config, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	convertOnce := func() {
		sql, err := readInput(cmd, []string{path})
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}
		if err := runConvert(cmd, sql, opts, cfg); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}

	convertOnce()
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes. Press Ctrl+C to stop.\n", path)

	base := filepath.Base(path)
	var debounce *time.Timer
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				log.Info("change detected", "file", path)
				convertOnce()
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watch error: %v\n", err)
		}
	}
}
