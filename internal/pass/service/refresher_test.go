package service_test

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/service"
	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/stretchr/testify/require"
)

type countingSource struct{ n atomic.Int32 }

func (s *countingSource) Barcode(context.Context, string) fusionauth.BarcodeResult {
	n := s.n.Add(1)
	return fusionauth.BarcodeResult{Success: true, BarcodeID: strconv.Itoa(int(n))}
}

func TestBarcodeRefresher(t *testing.T) {
	src := &countingSource{}
	r := &service.BarcodeRefresher{Source: src, Username: "u", Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	err := r.Run(ctx, func(res fusionauth.BarcodeResult) {
		got = append(got, res.BarcodeID)
		if len(got) == 3 {
			cancel()
		}
	})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, got)
}

func TestBarcodeRefresherDeliversImmediately(t *testing.T) {
	src := &countingSource{}
	r := &service.BarcodeRefresher{Source: src, Username: "u", Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx, func(fusionauth.BarcodeResult) { cancel() })
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first barcode was not delivered before the interval")
	}
	require.EqualValues(t, 1, src.n.Load())
}
