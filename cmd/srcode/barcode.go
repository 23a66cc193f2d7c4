package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/app"
	"github.com/bensonnlee/SRCode/internal/pass/service"
	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/bensonnlee/SRCode/pkg/passsdk"
	"github.com/spf13/cobra"
)

var (
	barcodeWatch    bool
	barcodeInterval time.Duration
)

var barcodeCmd = &cobra.Command{
	Use:   "barcode <username>",
	Short: "Show the current gym barcode",
	Long: `Mint a barcode id for the Student Recreation Center scanner.

A cached token is used when there is one. When it has expired and the
password was saved with "srcode login --remember", a fresh sign-in is done
first. With --watch a new barcode is printed every interval until
interrupted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		interval := barcodeInterval
		if !cmd.Flags().Changed("interval") {
			if cfg, err := app.LoadConfig(); err == nil {
				interval = cfg.BarcodeRefresh
			}
		}
		withBackend(func(ctx context.Context, b backend) int {
			if barcodeWatch {
				return runBarcodeWatch(ctx, os.Stdout, b, args[0], interval)
			}
			return runBarcode(ctx, os.Stdout, b, args[0])
		})
	},
}

func init() {
	barcodeCmd.Flags().BoolVar(&barcodeWatch, "watch", false, "Keep printing fresh barcodes")
	barcodeCmd.Flags().DurationVar(&barcodeInterval, "interval", fusionauth.DefaultBarcodeRefresh, "Rotation period for --watch (overrides SRCODE_BARCODE_REFRESH)")
	rootCmd.AddCommand(barcodeCmd)
}

func runBarcode(ctx context.Context, w io.Writer, b backend, username string) int {
	resp, err := b.Barcode(ctx, username)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitTrouble
	}

	if !resp.Success {
		emit(w, resp, resp.Error)
		return exitFailed
	}
	emit(w, resp, resp.BarcodeID)
	return exitOK
}

// runBarcodeWatch prints one line per rotation. Failures are shown and the
// next tick tries again.
func runBarcodeWatch(ctx context.Context, w io.Writer, b backend, username string, interval time.Duration) int {
	refresher := &service.BarcodeRefresher{
		Source:   barcodeSource{backend: b},
		Username: username,
		Interval: interval,
	}

	err := refresher.Run(ctx, func(res fusionauth.BarcodeResult) {
		resp := passsdk.BarcodeResponse{
			Success:   res.Success,
			BarcodeID: res.BarcodeID,
			Error:     res.Error,
			Kind:      res.Kind.Label(),
		}
		line := res.BarcodeID
		if !res.Success {
			line = "! " + res.Error
		}
		emit(w, resp, time.Now().Format(time.TimeOnly)+"  "+line)
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitTrouble
	}
	return exitOK
}
