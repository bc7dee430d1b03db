package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/praxis-payments/internal/notifier"
)

// ReportWorker loga o relatório do monitor periodicamente. Também serve
// de tique para o rollover preguiçoso dos contadores em períodos sem
// tráfego.
type ReportWorker struct {
	monitor      *notifier.Monitor
	logger       zerolog.Logger
	tickInterval time.Duration
}

func NewReportWorker(monitor *notifier.Monitor, logger zerolog.Logger) *ReportWorker {
	return &ReportWorker{
		monitor:      monitor,
		logger:       logger,
		tickInterval: 1 * time.Hour,
	}
}

func (w *ReportWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.tickInterval).Msg("🕒 report worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("report worker stopped")
			return
		case <-ticker.C:
			metrics := w.monitor.MetricsSnapshot()
			w.logger.Info().
				Int64("sent", metrics.TotalSent).
				Int64("failed", metrics.TotalFailed).
				Float64("success_rate", metrics.SuccessRate).
				Int("daily_volume", metrics.DailyVolume).
				Int("monthly_volume", metrics.MonthlyVolume).
				Msg("email delivery summary")
		}
	}
}
