package counter

import (
	"context"
	"log/slog"
	"time"
)

// Monitor periodically logs live counter state. It is stateless: each tick
// reads a fresh snapshot.
type Monitor struct {
	svc      *Service
	interval time.Duration
}

// NewMonitor creates a status monitor over svc. interval <= 0 defaults to 10s.
func NewMonitor(svc *Service, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Monitor{svc: svc, interval: interval}
}

// Start logs a status line every interval until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("[Monitor] Starting status monitor", "interval", m.interval)

	for {
		select {
		case <-ticker.C:
			snap := m.svc.Snapshot()
			slog.Info("[Monitor] Counter status",
				"total_unique", snap.TotalUnique,
				"open_minute", snap.OpenMinuteKey,
				"open_minute_count", snap.OpenCount,
			)
		case <-ctx.Done():
			slog.Info("[Monitor] Stopping (context cancelled)")
			return
		}
	}
}
