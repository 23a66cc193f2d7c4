package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	apiToken   string
	jsonOutput bool
)

// Exit codes shared by all commands.
const (
	exitOK      = 0
	exitFailed  = 1 // the request ran and was refused (bad password, no token, ...)
	exitTrouble = 2 // configuration, storage or transport problem
)

var rootCmd = &cobra.Command{
	Use:   "srcode",
	Short: "UCR Student Recreation Center pass",
	Long: `srcode signs in through the UCR CAS gateway and shows the rotating
Innosoft Fusion barcode used at the Student Recreation Center.

Without --server every command works against the local token database.
With --server the commands talk to a running "srcode serve".

Environment Variables:
  SRCODE_SERVER     Base URL of a running "srcode serve" (overridden by --server)
  SRCODE_API_TOKEN  Bearer token for the local API
  SRCODE_*          See "srcode serve --help" for the full list`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Local API URL (overrides SRCODE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "api-token", "", "Local API bearer token (overrides SRCODE_API_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// getServerURL returns the API URL from flag or env. Empty means local mode.
func getServerURL() string {
	if serverURL != "" {
		return serverURL
	}
	return os.Getenv("SRCODE_SERVER")
}

func getAPIToken() string {
	if apiToken != "" {
		return apiToken
	}
	return os.Getenv("SRCODE_API_TOKEN")
}

// withBackend opens a backend for the duration of fn and exits with fn's
// exit code.
func withBackend(fn func(ctx context.Context, b backend) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	b, err := openBackend()
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitTrouble)
	}

	code := fn(ctx, b)
	cancel()
	if err := b.Close(); err != nil && code == exitOK {
		code = exitTrouble
	}
	os.Exit(code)
}

// emit writes v as indented JSON in --json mode, otherwise human.
func emit(w io.Writer, v any, human string) {
	if jsonOutput {
		data, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}
	fmt.Fprintln(w, human)
}
