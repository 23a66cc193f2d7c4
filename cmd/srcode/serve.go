package main

import (
	"fmt"
	"os"

	"github.com/bensonnlee/SRCode/internal/pass/app"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local pass API",
	Long: `Run the local HTTP API on PORT (default 8080).

Environment Variables:
  SRCODE_LOGIN_START_URL   Fusion SSO entry point
  SRCODE_CAS_LOGIN_URL     CAS login form
  SRCODE_SERVICE_URL       CAS service callback (default: taken from the login-start redirect)
  SRCODE_LOGIN_FINISH_URL  Ticket exchange endpoint
  SRCODE_BARCODE_URL       Barcode endpoint
  SRCODE_TOKEN_HEADER      Header carrying the fusion token (default: X-Fusion-Token)
  SRCODE_HTTP_TIMEOUT      Upstream request timeout (default: 30s)
  SRCODE_TOKEN_TTL         Fusion token lifetime (default: 1h)
  SRCODE_BARCODE_REFRESH   Barcode rotation period (default: 12s)
  SRCODE_DEMO_MODE         Accept the offline demo account (default: true)
  SRCODE_DATABASE_FILE     SQLite database (default: srcode.db)
  SRCODE_MASTER_KEY_PATH   File holding the vault key
  SRCODE_MASTER_KEY        Vault key, when no key file is given
  SRCODE_API_TOKEN         Bearer token required on /v1 routes
  ENV, LOG_LEVEL, LOG_FORMAT, PORT, SHUTDOWN_GRACE_PERIOD, HOUSEKEEPING_INTERVAL`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		application, err := app.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		if err := application.Run(); err != nil {
			application.Logger().Error("application error", "error", err)
			os.Exit(exitTrouble)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}
