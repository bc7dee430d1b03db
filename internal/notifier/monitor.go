package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/praxis-payments/internal/entity"
)

const (
	defaultLogSize = 100
	warnThreshold  = 0.8

	storeTimeout = 3 * time.Second
)

// LogEntry registra exatamente uma tentativa de envio, sucesso ou falha.
type LogEntry struct {
	ID                int64                   `json:"id"`
	Timestamp         time.Time               `json:"timestamp"`
	Type              entity.NotificationKind `json:"type"`
	Recipient         string                  `json:"recipient"`
	Subject           string                  `json:"subject"`
	Success           bool                    `json:"success"`
	Error             string                  `json:"error,omitempty"`
	ErrorKind         ErrorKind               `json:"error_kind,omitempty"`
	ProviderMessageID string                  `json:"provider_message_id,omitempty"`
	AttemptNumber     int                     `json:"attempt_number"`
}

// Metrics é o agregado mutado a cada entrada de log. SuccessRate é
// sempre recalculada a partir dos dois contadores, nunca armazenada
// de forma independente.
type Metrics struct {
	TotalSent     int64                             `json:"total_sent"`
	TotalFailed   int64                             `json:"total_failed"`
	SuccessRate   float64                           `json:"success_rate"`
	DailyVolume   int                               `json:"daily_volume"`
	MonthlyVolume int                               `json:"monthly_volume"`
	LastResetDate string                            `json:"last_reset_date"` // YYYY-MM-DD
	ErrorsByKind  map[ErrorKind]int64               `json:"errors_by_kind"`
	EmailsByType  map[entity.NotificationKind]int64 `json:"emails_by_type"`
}

// Decision é a resposta explícita do limitador, consultada ANTES de
// qualquer tentativa de envio.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Snapshot é o estado persistível do monitor.
type Snapshot struct {
	Metrics Metrics `json:"metrics"`
	NextID  int64   `json:"next_id"`
}

// StateStore persiste o estado entre restarts. Opcional: sem store o
// monitor degrada para memória, sem falhar.
type StateStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

type Limits struct {
	Daily   int
	Monthly int
	LogSize int
}

// Monitor acumula contadores de volume e o ring buffer de tentativas.
// Construído uma vez no start do processo e injetado; os contadores são
// aproximações por processo (limite de escala conhecido).
type Monitor struct {
	mu      sync.Mutex
	saveMu  sync.Mutex // serializa persist() na ordem dos snapshots
	limits  Limits
	metrics Metrics
	log     []LogEntry
	nextID  int64
	store   StateStore
	logger  zerolog.Logger
	now     func() time.Time
}

func NewMonitor(limits Limits, store StateStore, logger zerolog.Logger) *Monitor {
	if limits.LogSize <= 0 {
		limits.LogSize = defaultLogSize
	}
	m := &Monitor{
		limits: limits,
		metrics: Metrics{
			ErrorsByKind: make(map[ErrorKind]int64),
			EmailsByType: make(map[entity.NotificationKind]int64),
		},
		nextID: 1,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	m.metrics.LastResetDate = m.now().Format("2006-01-02")
	m.restore()
	return m
}

// restore carrega o snapshot persistido, best-effort.
func (m *Monitor) restore() {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	snap, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("email metrics state load failed, starting fresh")
		return
	}
	if snap == nil {
		return
	}
	m.metrics = snap.Metrics
	if m.metrics.ErrorsByKind == nil {
		m.metrics.ErrorsByKind = make(map[ErrorKind]int64)
	}
	if m.metrics.EmailsByType == nil {
		m.metrics.EmailsByType = make(map[entity.NotificationKind]int64)
	}
	// Snapshot de schema antigo (ou gravação parcial) pode vir sem data;
	// qualquer valor que não parseia é substituído pela data corrente
	// para o rollover nunca fatiar uma string curta.
	if _, err := time.Parse("2006-01-02", m.metrics.LastResetDate); err != nil {
		m.logger.Warn().Str("last_reset_date", m.metrics.LastResetDate).
			Msg("restored snapshot has invalid reset date, using today")
		m.metrics.LastResetDate = m.now().Format("2006-01-02")
	}
	if snap.NextID > m.nextID {
		m.nextID = snap.NextID
	}
}

// rolloverLocked zera os contadores quando a data/mês avançou além de
// LastResetDate. Chamado em todo log e em todo CanSend; não há timer.
func (m *Monitor) rolloverLocked() {
	today := m.now().Format("2006-01-02")
	if m.metrics.LastResetDate == today {
		return
	}
	m.metrics.DailyVolume = 0
	if m.metrics.LastResetDate[:7] != today[:7] {
		m.metrics.MonthlyVolume = 0
	}
	m.metrics.LastResetDate = today
}

// CanSend devolve a decisão de volume antes de qualquer envio.
// Bloquear é responsabilidade exclusiva deste método; os avisos de
// threshold emitidos no log são só observacionais.
func (m *Monitor) CanSend() Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolloverLocked()

	if m.limits.Daily > 0 && m.metrics.DailyVolume >= m.limits.Daily {
		return Decision{Allowed: false, Reason: "daily volume limit reached"}
	}
	if m.limits.Monthly > 0 && m.metrics.MonthlyVolume >= m.limits.Monthly {
		return Decision{Allowed: false, Reason: "monthly volume limit reached"}
	}
	return Decision{Allowed: true}
}

// Attempt descreve o resultado de uma tentativa para registro.
type Attempt struct {
	Type              entity.NotificationKind
	Recipient         string
	Subject           string
	Success           bool
	Error             string
	ErrorKind         ErrorKind
	ProviderMessageID string
	AttemptNumber     int

	// Denied marca negação pelo limitador de volume: entra no log mas
	// não incrementa os contadores de volume.
	Denied bool
}

// LogAttempt registra exatamente uma entrada por tentativa, com id
// monotônico, e atualiza o agregado. Persiste o snapshot best-effort.
func (m *Monitor) LogAttempt(a Attempt) LogEntry {
	m.mu.Lock()
	m.rolloverLocked()

	if a.AttemptNumber <= 0 {
		a.AttemptNumber = 1
	}
	entry := LogEntry{
		ID:                m.nextID,
		Timestamp:         m.now(),
		Type:              a.Type,
		Recipient:         a.Recipient,
		Subject:           a.Subject,
		Success:           a.Success,
		Error:             a.Error,
		ErrorKind:         a.ErrorKind,
		ProviderMessageID: a.ProviderMessageID,
		AttemptNumber:     a.AttemptNumber,
	}
	m.nextID++

	m.log = append(m.log, entry)
	if len(m.log) > m.limits.LogSize {
		m.log = m.log[len(m.log)-m.limits.LogSize:]
	}

	if a.Success {
		m.metrics.TotalSent++
	} else {
		m.metrics.TotalFailed++
		if a.ErrorKind != "" {
			m.metrics.ErrorsByKind[a.ErrorKind]++
		}
	}
	// Negado pelo limitador: nada chegou ao provedor, então não consome
	// orçamento diário/mensal. A entrada de log permanece.
	if !a.Denied {
		m.metrics.DailyVolume++
		m.metrics.MonthlyVolume++
	}
	m.metrics.EmailsByType[a.Type]++
	m.recomputeRateLocked()
	m.checkThresholdsLocked()

	// saveMu é adquirido ainda sob m.mu: os snapshots chegam ao store na
	// mesma ordem em que foram tirados, sem segurar m.mu durante o I/O.
	snap := Snapshot{Metrics: m.copyMetricsLocked(), NextID: m.nextID}
	m.saveMu.Lock()
	m.mu.Unlock()

	m.persist(snap)
	m.saveMu.Unlock()
	return entry
}

func (m *Monitor) recomputeRateLocked() {
	total := m.metrics.TotalSent + m.metrics.TotalFailed
	if total == 0 {
		m.metrics.SuccessRate = 0
		return
	}
	m.metrics.SuccessRate = float64(m.metrics.TotalSent) / float64(total) * 100
}

func (m *Monitor) checkThresholdsLocked() {
	m.logWindowThreshold("daily", m.metrics.DailyVolume, m.limits.Daily)
	m.logWindowThreshold("monthly", m.metrics.MonthlyVolume, m.limits.Monthly)
}

func (m *Monitor) logWindowThreshold(window string, volume, limit int) {
	if limit <= 0 {
		return
	}
	switch {
	case volume >= limit:
		m.logger.Error().Str("window", window).Int("volume", volume).Int("limit", limit).
			Msg("email volume limit reached")
	case float64(volume) >= float64(limit)*warnThreshold:
		m.logger.Warn().Str("window", window).Int("volume", volume).Int("limit", limit).
			Msg("email volume above 80% of limit")
	}
}

func (m *Monitor) persist(snap Snapshot) {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := m.store.Save(ctx, snap); err != nil {
		m.logger.Warn().Err(err).Msg("email metrics state save failed")
	}
}

func (m *Monitor) copyMetricsLocked() Metrics {
	out := m.metrics
	out.ErrorsByKind = make(map[ErrorKind]int64, len(m.metrics.ErrorsByKind))
	for k, v := range m.metrics.ErrorsByKind {
		out.ErrorsByKind[k] = v
	}
	out.EmailsByType = make(map[entity.NotificationKind]int64, len(m.metrics.EmailsByType))
	for k, v := range m.metrics.EmailsByType {
		out.EmailsByType[k] = v
	}
	return out
}

// MetricsSnapshot devolve uma cópia do agregado atual (pós-rollover).
func (m *Monitor) MetricsSnapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolloverLocked()
	return m.copyMetricsLocked()
}

// RecentFailures devolve as últimas n falhas, mais recente primeiro.
func (m *Monitor) RecentFailures(n int) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]LogEntry, 0, n)
	for i := len(m.log) - 1; i >= 0 && len(out) < n; i-- {
		if !m.log[i].Success {
			out = append(out, m.log[i])
		}
	}
	return out
}
