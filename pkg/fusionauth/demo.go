package fusionauth

import (
	"strings"
	"sync/atomic"
)

// Demo account, served without any network I/O when Client.Demo is set.
const (
	DemoUsername    = "demo"
	DemoDisplayName = "Demo User"
	DemoToken       = "DEMO_TOKEN_12345"
)

// DemoBarcodeIDs are handed out in rotation for DemoToken.
var DemoBarcodeIDs = []string{
	"DEMO1234567890",
	"DEMO0987654321",
	"DEMO1357924680",
	"DEMO2468135790",
}

var demoCounter atomic.Uint64

// IsDemoUser reports whether username selects the demo account.
func IsDemoUser(username string) bool {
	return strings.EqualFold(strings.TrimSpace(username), DemoUsername)
}

func nextDemoBarcode() string {
	n := demoCounter.Add(1) - 1
	return DemoBarcodeIDs[n%uint64(len(DemoBarcodeIDs))]
}
