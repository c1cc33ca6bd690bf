package server

import (
	"context"
	"log/slog"
	"time"
)

// RunMetrics logs client and live-quark counts every interval until ctx
// is cancelled, skipping intervals where both counts are zero. Grounded on the pack's periodic room-stats ticker
// (rustyguts-bken's RunMetrics), adapted from log.Printf to slog and
// from datagram/byte counters to this server's client/quark counts.
func RunMetrics(ctx context.Context, st *State, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			clients := st.ClientCount()
			quarks := st.Quarks.Count()
			if clients > 0 || quarks > 0 {
				slog.Info("metrics", "clients", clients, "live_quarks", quarks)
			}
		}
	}
}
