package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/validate"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <original.sql> <converted.sql>",
		Short: "Validate a converted script against its original",
		Long: `Compare an original script with its converted form and report
structural problems: unbalanced brackets or quotes, dropped clauses,
and patterns that tend to perform poorly on the target.`,
		Example: `  sqlbridge validate schema.sql schema_pg.sql

  # Machine-readable output
  sqlbridge validate --output json schema.sql schema_pg.sql`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())

			original, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			converted, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}

			ruleCfg := core.ConfigForProfile(core.Profile(cfg.Profile))
			warns := validate.Check(string(original), string(converted), validate.FromConfig(ruleCfg))

			format := resolveFormat(cfg.Output, cmd.OutOrStdout())
			if err := renderValidation(cmd.OutOrStdout(), warns, format); err != nil {
				return err
			}
			for _, w := range warns {
				if w.Severity == core.SeverityError {
					return fmt.Errorf("validation found %d issue(s)", len(warns))
				}
			}
			return nil
		},
	}
	return cmd
}
