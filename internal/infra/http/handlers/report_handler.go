package handlers

import (
	"net/http"

	"github.com/xavierca1/praxis-payments/internal/notifier"
)

// ReportHandler expõe o relatório e o agregado do monitor de emails.
type ReportHandler struct {
	Monitor *notifier.Monitor
}

func NewReportHandler(monitor *notifier.Monitor) *ReportHandler {
	return &ReportHandler{Monitor: monitor}
}

func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.Monitor.GenerateReport()))
}

func (h *ReportHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Monitor.MetricsSnapshot())
}
