package service

import (
	"context"
	"time"

	"github.com/bensonnlee/SRCode/pkg/fusionauth"
)

// BarcodeSource mints one barcode for a user.
type BarcodeSource interface {
	Barcode(ctx context.Context, username string) fusionauth.BarcodeResult
}

// BarcodeRefresher keeps a fresh barcode on screen: one immediately, then
// one every Interval until ctx is done.
type BarcodeRefresher struct {
	Source   BarcodeSource
	Username string
	Interval time.Duration
}

// Run blocks until ctx is cancelled and returns nil. deliver is called from
// the Run goroutine only.
func (r *BarcodeRefresher) Run(ctx context.Context, deliver func(fusionauth.BarcodeResult)) error {
	interval := r.Interval
	if interval <= 0 {
		interval = fusionauth.DefaultBarcodeRefresh
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res := r.Source.Barcode(ctx, r.Username)
		if ctx.Err() != nil {
			return nil
		}
		deliver(res)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
