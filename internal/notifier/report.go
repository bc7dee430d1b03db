package notifier

import (
	"fmt"
	"strings"
)

// GenerateReport monta o relatório operacional em texto: percentuais de
// volume, totais, contagens por tipo e por categoria de erro, as 5
// falhas mais recentes e os avisos de threshold ativos.
func (m *Monitor) GenerateReport() string {
	metrics := m.MetricsSnapshot()
	failures := m.RecentFailures(5)

	var b strings.Builder
	b.WriteString("=== Email Delivery Report ===\n\n")

	b.WriteString("Volume:\n")
	b.WriteString(fmt.Sprintf("  daily:   %s\n", volumeLine(metrics.DailyVolume, m.limits.Daily)))
	b.WriteString(fmt.Sprintf("  monthly: %s\n", volumeLine(metrics.MonthlyVolume, m.limits.Monthly)))
	b.WriteString(fmt.Sprintf("  last reset: %s\n\n", metrics.LastResetDate))

	b.WriteString("Totals:\n")
	b.WriteString(fmt.Sprintf("  sent: %d  failed: %d  success rate: %.1f%%\n\n",
		metrics.TotalSent, metrics.TotalFailed, metrics.SuccessRate))

	if len(metrics.EmailsByType) > 0 {
		b.WriteString("By type:\n")
		for kind, count := range metrics.EmailsByType {
			b.WriteString(fmt.Sprintf("  %s: %d\n", kind, count))
		}
		b.WriteString("\n")
	}

	if len(metrics.ErrorsByKind) > 0 {
		b.WriteString("Errors by kind:\n")
		for kind, count := range metrics.ErrorsByKind {
			b.WriteString(fmt.Sprintf("  %s: %d\n", kind, count))
		}
		b.WriteString("\n")
	}

	if len(failures) > 0 {
		b.WriteString("Recent failures:\n")
		for _, f := range failures {
			b.WriteString(fmt.Sprintf("  #%d %s %s -> %s [%s] %s\n",
				f.ID, f.Timestamp.Format("2006-01-02 15:04:05"), f.Type, f.Recipient, f.ErrorKind, f.Error))
		}
		b.WriteString("\n")
	}

	warnings := activeWarnings(metrics, m.limits)
	if len(warnings) > 0 {
		b.WriteString("Active warnings:\n")
		for _, w := range warnings {
			b.WriteString("  - " + w + "\n")
		}
	}

	return b.String()
}

func volumeLine(volume, limit int) string {
	if limit <= 0 {
		return fmt.Sprintf("%d (no limit)", volume)
	}
	pct := float64(volume) / float64(limit) * 100
	return fmt.Sprintf("%d/%d (%.1f%%)", volume, limit, pct)
}

func activeWarnings(metrics Metrics, limits Limits) []string {
	var warnings []string
	warnings = appendWindowWarning(warnings, "daily", metrics.DailyVolume, limits.Daily)
	warnings = appendWindowWarning(warnings, "monthly", metrics.MonthlyVolume, limits.Monthly)
	return warnings
}

func appendWindowWarning(warnings []string, window string, volume, limit int) []string {
	if limit <= 0 {
		return warnings
	}
	switch {
	case volume >= limit:
		return append(warnings, fmt.Sprintf("%s volume limit reached (%d/%d)", window, volume, limit))
	case float64(volume) >= float64(limit)*warnThreshold:
		return append(warnings, fmt.Sprintf("%s volume above 80%% (%d/%d)", window, volume, limit))
	}
	return warnings
}
