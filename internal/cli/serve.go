package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/internal/server"
	"github.com/leapstack-labs/sqlbridge/internal/state"
	"github.com/leapstack-labs/sqlbridge/pkg/convert"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion API server",
		Long: `Start an HTTP server exposing the conversion engine as a JSON API.

Conversions are recorded in the history database; inspect them with
"sqlbridge history".`,
		Example: `  sqlbridge serve --port 8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			log := getLogger(cmd.Context())

			if dir := filepath.Dir(cfg.HistoryPath); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create history directory: %w", err)
				}
			}
			store, err := state.Open(cfg.HistoryPath, log)
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			defer func() { _ = store.Close() }()

			secret := cfg.SessionSecret
			if secret == "" {
				// Sessions only carry the rule profile, so an ephemeral
				// secret is acceptable when none is configured.
				buf := make([]byte, 32)
				if _, err := rand.Read(buf); err != nil {
					return fmt.Errorf("failed to generate session secret: %w", err)
				}
				secret = hex.EncodeToString(buf)
			}

			if port == 0 {
				port = cfg.Port
			}
			srv := server.New(server.Config{
				Engine:        convert.New(convert.Config{Logger: log, Workers: cfg.Workers}),
				History:       store,
				Port:          port,
				SessionSecret: secret,
				Logger:        log,
			})
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Listening on :%d. Press Ctrl+C to stop.\n", port)
			return srv.Serve(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides config)")
	return cmd
}
