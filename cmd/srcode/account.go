package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bensonnlee/SRCode/pkg/passsdk"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <username>",
	Short: "Sign in again with the saved password",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withBackend(func(ctx context.Context, b backend) int {
			return runRefresh(ctx, os.Stdout, b, args[0])
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout <username>",
	Short: "Forget the cached token and saved password",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withBackend(func(ctx context.Context, b backend) int {
			return runLogout(ctx, os.Stdout, b, args[0])
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <username>",
	Short: "Show what is stored for a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withBackend(func(ctx context.Context, b backend) int {
			return runStatus(ctx, os.Stdout, b, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd, logoutCmd, statusCmd)
}

func runRefresh(ctx context.Context, w io.Writer, b backend, username string) int {
	resp, err := b.Refresh(ctx, username)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitTrouble
	}
	if !resp.Success {
		emit(w, resp, "Refresh failed: "+resp.Error)
		return exitFailed
	}
	emit(w, resp, "Token refreshed.")
	return exitOK
}

func runLogout(ctx context.Context, w io.Writer, b backend, username string) int {
	if err := b.Logout(ctx, username); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitTrouble
	}
	emit(w, map[string]bool{"success": true}, "Signed out.")
	return exitOK
}

func runStatus(ctx context.Context, w io.Writer, b backend, username string) int {
	resp, err := b.Status(ctx, username)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitTrouble
	}
	emit(w, resp, formatStatusHuman(resp))
	return exitOK
}

// formatStatusHuman formats status response for human readability
func formatStatusHuman(st *passsdk.StatusResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User:        %s\n", st.Username)
	if st.DisplayName != "" {
		fmt.Fprintf(&sb, "Name:        %s\n", st.DisplayName)
	}

	switch {
	case st.HasToken && st.Demo:
		sb.WriteString("Token:       demo\n")
	case st.HasToken:
		fmt.Fprintf(&sb, "Token:       cached (%s)\n", st.TokenFingerprint)
	default:
		sb.WriteString("Token:       none\n")
	}
	if st.TokenExpiresAt != nil {
		fmt.Fprintf(&sb, "Expires:     %s\n", formatTime(*st.TokenExpiresAt))
	}
	if st.Subject != "" {
		fmt.Fprintf(&sb, "Subject:     %s\n", st.Subject)
	}

	remembered := "no"
	if st.Remembered {
		remembered = "yes"
	}
	fmt.Fprintf(&sb, "Remembered:  %s", remembered)
	if st.LastLoginAt != nil {
		fmt.Fprintf(&sb, "\nLast login:  %s", formatTime(*st.LastLoginAt))
	}
	return sb.String()
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
