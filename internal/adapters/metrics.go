package adapters

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adralidus/lgl-portal/internal/config"
	"github.com/adralidus/lgl-portal/internal/domain"
)

// MetricsServer exposes derived triage statistics via prometheus.
type MetricsServer struct {
	*http.Server

	cfg *config.Config
	db  *SqlRepo

	sessionsByStatus        *prometheus.GaugeVec
	notificationsByPriority *prometheus.GaugeVec
	notificationsUnread     prometheus.Gauge
}

// NewMetricsServer returns a new prometheus server.
func NewMetricsServer(cfg *config.Config, db *SqlRepo) *MetricsServer {
	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		Server: &http.Server{
			Addr:    cfg.Statistics.ListeningAddress,
			Handler: mux,
		},
		cfg: cfg,
		db:  db,

		sessionsByStatus: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lgl_sessions",
				Help: "Number of platform sessions by derived status.",
			}, []string{"status"},
		),
		notificationsByPriority: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lgl_notifications",
				Help: "Number of notifications by derived priority.",
			}, []string{"priority"},
		),
		notificationsUnread: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "lgl_notifications_unread",
				Help: "Number of unread notifications.",
			},
		),
	}
}

// Run starts the metrics server and the collection loop. The function blocks
// until the given context is cancelled.
func (m *MetricsServer) Run(ctx context.Context) {
	if m.cfg.Statistics.ListeningAddress == "" {
		return // exporter disabled
	}

	go func() {
		if err := m.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics service exited", "address", m.Addr, "error", err)
		}
	}()
	slog.Info("started metrics service", "address", m.Addr)

	interval := m.cfg.Statistics.CollectInterval
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = m.Shutdown(shutdownCtx)
				cancel()
				return
			case <-ticker.C:
				m.collect(ctx)
			}
		}
	}()
}

func (m *MetricsServer) collect(ctx context.Context) {
	now := time.Now()

	sessions, err := m.db.GetAllSessions(ctx)
	if err != nil {
		slog.Warn("failed to collect session metrics", "error", err)
	} else {
		counts := map[domain.SessionStatus]int{}
		for _, s := range sessions {
			counts[s.Status(now, m.cfg.Sessions.IdleTimeout)]++
		}
		for _, status := range []domain.SessionStatus{
			domain.SessionStatusActive,
			domain.SessionStatusIdle,
			domain.SessionStatusExpired,
			domain.SessionStatusTerminated,
		} {
			m.sessionsByStatus.WithLabelValues(string(status)).Set(float64(counts[status]))
		}
	}

	notifications, err := m.db.GetAllNotifications(ctx)
	if err != nil {
		slog.Warn("failed to collect notification metrics", "error", err)
		return
	}

	unread := 0
	priorities := map[domain.NotificationPriority]int{}
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
		priorities[n.Enrich(now).Priority]++
	}

	m.notificationsUnread.Set(float64(unread))
	for _, priority := range []domain.NotificationPriority{
		domain.NotificationPriorityCritical,
		domain.NotificationPriorityHigh,
		domain.NotificationPriorityMedium,
		domain.NotificationPriorityLow,
	} {
		m.notificationsByPriority.WithLabelValues(string(priority)).Set(float64(priorities[priority]))
	}
}
