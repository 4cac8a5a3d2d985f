package monitoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventhive_events_created_total",
		Help: "Number of events created, by persistence mode.",
	}, []string{"mode"})

	ticketsSoldTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventhive_tickets_sold_total",
		Help: "Number of tickets sold, by event and mint mode.",
	}, []string{"event_id", "mode"})

	chainSyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventhive_chain_sync_total",
		Help: "Contract reconciliation attempts, by outcome.",
	}, []string{"status"})

	chainSyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eventhive_chain_sync_duration_seconds",
		Help:    "Time spent on a full contract reconciliation.",
		Buckets: prometheus.DefBuckets,
	})

	walletCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventhive_wallet_calls_total",
		Help: "Wallet operations issued, by operation and outcome.",
	}, []string{"operation", "status"})

	activeEventsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eventhive_active_events",
		Help: "Number of active events currently in the store.",
	})
)

func TrackEventCreated(mode string) {
	eventsCreatedTotal.WithLabelValues(mode).Inc()
}

func TrackTicketSold(eventID, mode string) {
	ticketsSoldTotal.WithLabelValues(eventID, mode).Inc()
}

func TrackChainSync(status string) {
	chainSyncTotal.WithLabelValues(status).Inc()
}

func ObserveChainSyncDuration(d time.Duration) {
	chainSyncDuration.Observe(d.Seconds())
}

func TrackWalletCall(operation, status string) {
	walletCallsTotal.WithLabelValues(operation, status).Inc()
}

// Monitor periodically samples store-level gauges. The count function is
// injected to avoid a dependency on the services package.
type Monitor struct {
	countActiveEvents func() int
	interval          time.Duration
}

func NewMonitor(countActiveEvents func() int) *Monitor {
	return &Monitor{
		countActiveEvents: countActiveEvents,
		interval:          30 * time.Second,
	}
}

// Start blocks collecting gauges until the context is cancelled. Run it in
// its own goroutine.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("metrics collector started", "interval", m.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("metrics collector stopped")
			return
		case <-ticker.C:
			activeEventsGauge.Set(float64(m.countActiveEvents()))
		}
	}
}
