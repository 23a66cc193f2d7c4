package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const maxPasswordLength = 512

var loginRemember bool

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in through UCR CAS",
	Long: `Sign in with your UCR NetID and cache the Fusion token.

The password is read from the terminal, or from the first line of stdin
when stdin is not a terminal. With --remember the password is kept
encrypted so that "srcode barcode" and "srcode refresh" can sign in again
on their own.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, err := promptPassword(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitTrouble)
		}
		withBackend(func(ctx context.Context, b backend) int {
			return runLogin(ctx, os.Stdout, b, args[0], password, loginRemember)
		})
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginRemember, "remember", false, "Keep the password for unattended refresh")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(ctx context.Context, w io.Writer, b backend, username, password string, remember bool) int {
	resp, err := b.Login(ctx, username, password, remember)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitTrouble
	}

	if !resp.Success {
		emit(w, resp, "Sign-in failed: "+resp.Error)
		return exitFailed
	}

	human := fmt.Sprintf("Signed in as %s (token %s)", username, fusionauth.MaskToken(resp.FusionToken))
	if remember {
		human += "\nPassword saved for automatic sign-in."
	}
	emit(w, resp, human)
	return exitOK
}

func promptPassword(username string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", username)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))

		// Always print newline, even on error
		fmt.Fprintln(os.Stderr)

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}

	return readPassword(os.Stdin)
}

// readPassword reads one line from a non-terminal reader.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReaderSize(r, maxPasswordLength+2).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	line = strings.TrimRight(line, "\r\n")
	if len(line) > maxPasswordLength {
		return "", errors.New("password too long")
	}
	return line, nil
}
