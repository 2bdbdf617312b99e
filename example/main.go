// Demo of the commcheck library API with a fake prober, so it runs anywhere
// without ICMP privileges or real devices.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atd-dts/commcheck"
)

// fakeProbe simulates a small field network: one device answers, one address
// does not resolve, one never replies.
func fakeProbe(_ context.Context, addr string, _ time.Duration) (float64, commcheck.Outcome) {
	switch {
	case strings.Contains(addr, " "):
		return 0, commcheck.OutcomeInvalidHost
	case strings.HasSuffix(addr, ".99"):
		time.Sleep(50 * time.Millisecond)
		return 0, commcheck.OutcomeTimeout
	default:
		return 4.2, commcheck.OutcomeSuccess
	}
}

func main() {
	targets := make([]commcheck.Target, 0, 3)
	for _, dev := range []struct {
		id int
		ip string
	}{
		{147, "10.66.2.12"},
		{212, "not a hostname"},
		{305, "10.66.2.99"},
	} {
		t, err := commcheck.NewTarget(dev.id, "camera", dev.ip,
			commcheck.WithMeta("knack_id", fmt.Sprintf("knack-%d", dev.id)),
		)
		if err != nil {
			slog.Error("failed to create target", "error", err)
			os.Exit(1)
		}
		targets = append(targets, t)
	}

	runner, err := commcheck.New(
		commcheck.WithWorkerCount(2),
		commcheck.WithMaxAttempts(2),
		commcheck.WithTimeout(time.Second),
		commcheck.WithProber(commcheck.ProbeFunc(fakeProbe)),
		commcheck.WithResultCallback(func(r commcheck.ProbeResult) {
			fmt.Printf("  %-16s -> %-16s (%d attempts)\n",
				r.Target.IPAddress(), r.StatusCode.Desc(), r.Attempts)
		}),
	)
	if err != nil {
		slog.Error("failed to create runner", "error", err)
		os.Exit(1)
	}

	fmt.Println("Probing 3 devices with 2 workers...")
	results, err := runner.Execute(context.Background(), targets)
	if err != nil {
		slog.Error("comm check failed", "error", err)
		os.Exit(1)
	}

	fmt.Println("\nSummary:")
	for desc, count := range commcheck.Summary(results) {
		fmt.Printf("  %s: %d\n", desc, count)
	}
}
