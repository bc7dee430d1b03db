package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/praxis-payments/internal/entity"
)

func newTestMonitor(limits Limits) *Monitor {
	return NewMonitor(limits, nil, zerolog.Nop())
}

func successAttempt() Attempt {
	return Attempt{
		Type:              entity.KindUserConfirmation,
		Recipient:         "user@example.com",
		Subject:           "hello",
		Success:           true,
		ProviderMessageID: "<id@host>",
	}
}

func TestCanSendDailyLimitBoundary(t *testing.T) {
	dailyLimit := 5
	m := newTestMonitor(Limits{Daily: dailyLimit, Monthly: 100})

	for i := 0; i < dailyLimit-1; i++ {
		m.LogAttempt(successAttempt())
	}
	assert.True(t, m.CanSend().Allowed, "one below the limit must still allow")

	m.LogAttempt(successAttempt())
	decision := m.CanSend()
	assert.False(t, decision.Allowed)
	assert.Equal(t, "daily volume limit reached", decision.Reason)
}

func TestCanSendMonthlyLimit(t *testing.T) {
	m := newTestMonitor(Limits{Daily: 100, Monthly: 2})
	m.LogAttempt(successAttempt())
	m.LogAttempt(successAttempt())

	decision := m.CanSend()
	assert.False(t, decision.Allowed)
	assert.Equal(t, "monthly volume limit reached", decision.Reason)
}

func TestSuccessRateRecomputedFromCounters(t *testing.T) {
	m := newTestMonitor(Limits{Daily: 100, Monthly: 100})

	for i := 0; i < 3; i++ {
		m.LogAttempt(successAttempt())
	}
	m.LogAttempt(Attempt{
		Type:      entity.KindAdminNotification,
		Recipient: "admin@example.com",
		Subject:   "x",
		Success:   false,
		Error:     "smtp send failed",
		ErrorKind: ErrorKindProvider,
	})

	metrics := m.MetricsSnapshot()
	assert.Equal(t, int64(3), metrics.TotalSent)
	assert.Equal(t, int64(1), metrics.TotalFailed)
	assert.Equal(t, 75.0, metrics.SuccessRate)
	assert.Equal(t, int64(1), metrics.ErrorsByKind[ErrorKindProvider])
	assert.Equal(t, int64(1), metrics.EmailsByType[entity.KindAdminNotification])
	assert.Equal(t, int64(3), metrics.EmailsByType[entity.KindUserConfirmation])
}

func TestLogEntryIDsAreMonotonic(t *testing.T) {
	m := newTestMonitor(Limits{Daily: 100, Monthly: 100})

	first := m.LogAttempt(successAttempt())
	second := m.LogAttempt(successAttempt())
	third := m.LogAttempt(successAttempt())

	assert.Equal(t, first.ID+1, second.ID)
	assert.Equal(t, second.ID+1, third.ID)
}

func TestRingBufferKeepsMostRecentEntries(t *testing.T) {
	m := newTestMonitor(Limits{Daily: 1000, Monthly: 1000, LogSize: 3})

	for i := 0; i < 5; i++ {
		a := successAttempt()
		a.Success = false
		a.Error = "boom"
		a.ErrorKind = ErrorKindProvider
		m.LogAttempt(a)
	}

	failures := m.RecentFailures(10)
	assert.Len(t, failures, 3)
	// Mais recente primeiro.
	assert.Equal(t, int64(5), failures[0].ID)
	assert.Equal(t, int64(3), failures[2].ID)
}

func TestLazyDailyRollover(t *testing.T) {
	m := newTestMonitor(Limits{Daily: 2, Monthly: 100})

	current := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }
	m.metrics.LastResetDate = current.Format("2006-01-02")

	m.LogAttempt(successAttempt())
	m.LogAttempt(successAttempt())
	assert.False(t, m.CanSend().Allowed)

	// Vira o dia (mesmo mês): só o contador diário zera.
	current = current.Add(24 * time.Hour)
	assert.True(t, m.CanSend().Allowed)

	metrics := m.MetricsSnapshot()
	assert.Equal(t, 0, metrics.DailyVolume)
	assert.Equal(t, 2, metrics.MonthlyVolume)
	assert.Equal(t, "2026-08-31", metrics.LastResetDate)
}

func TestLazyMonthlyRollover(t *testing.T) {
	m := newTestMonitor(Limits{Daily: 100, Monthly: 100})

	current := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }
	m.metrics.LastResetDate = current.Format("2006-01-02")

	m.LogAttempt(successAttempt())

	current = time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC)
	metrics := m.MetricsSnapshot()
	assert.Equal(t, 0, metrics.DailyVolume)
	assert.Equal(t, 0, metrics.MonthlyVolume)
	assert.Equal(t, "2026-09-01", metrics.LastResetDate)
}

type fakeStore struct {
	saved  []Snapshot
	loaded *Snapshot
	err    error
}

func (s *fakeStore) Save(ctx context.Context, snap Snapshot) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, snap)
	return nil
}

func (s *fakeStore) Load(ctx context.Context) (*Snapshot, error) {
	return s.loaded, s.err
}

func TestMonitorRestoresFromStore(t *testing.T) {
	store := &fakeStore{loaded: &Snapshot{
		Metrics: Metrics{
			TotalSent:     10,
			TotalFailed:   2,
			DailyVolume:   4,
			MonthlyVolume: 12,
			LastResetDate: time.Now().Format("2006-01-02"),
			ErrorsByKind:  map[ErrorKind]int64{ErrorKindNetwork: 2},
			EmailsByType:  map[entity.NotificationKind]int64{entity.KindUserWelcome: 12},
		},
		NextID: 13,
	}}

	m := NewMonitor(Limits{Daily: 100, Monthly: 100}, store, zerolog.Nop())
	entry := m.LogAttempt(successAttempt())
	assert.Equal(t, int64(13), entry.ID)

	metrics := m.MetricsSnapshot()
	assert.Equal(t, int64(11), metrics.TotalSent)
	assert.Equal(t, 5, metrics.DailyVolume)
}

func TestMonitorRestoresSnapshotWithoutResetDate(t *testing.T) {
	// Snapshot de schema antigo: last_reset_date ausente vira "".
	store := &fakeStore{loaded: &Snapshot{Metrics: Metrics{TotalSent: 1}}}

	m := NewMonitor(Limits{Daily: 100, Monthly: 100}, store, zerolog.Nop())

	assert.True(t, m.CanSend().Allowed)
	entry := m.LogAttempt(successAttempt())
	assert.Equal(t, int64(1), entry.ID)

	metrics := m.MetricsSnapshot()
	assert.Equal(t, int64(2), metrics.TotalSent)
	assert.Equal(t, time.Now().Format("2006-01-02"), metrics.LastResetDate)
}

func TestSnapshotsPersistInOrder(t *testing.T) {
	store := &fakeStore{}
	m := NewMonitor(Limits{Daily: 1000, Monthly: 1000}, store, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.LogAttempt(successAttempt())
		}()
	}
	wg.Wait()

	assert.Len(t, store.saved, 20)
	for i := 1; i < len(store.saved); i++ {
		assert.Greater(t, store.saved[i].NextID, store.saved[i-1].NextID,
			"snapshots must reach the store in the order they were taken")
	}
}

func TestDeniedAttemptDoesNotConsumeVolume(t *testing.T) {
	m := newTestMonitor(Limits{Daily: 10, Monthly: 100})

	m.LogAttempt(successAttempt())
	m.LogAttempt(Attempt{
		Type:      entity.KindUserWelcome,
		Recipient: "user@example.com",
		Subject:   "s",
		Success:   false,
		Error:     "send denied: daily volume limit reached",
		ErrorKind: ErrorKindConfiguration,
		Denied:    true,
	})

	metrics := m.MetricsSnapshot()
	assert.Equal(t, 1, metrics.DailyVolume)
	assert.Equal(t, 1, metrics.MonthlyVolume)
	assert.Equal(t, int64(1), metrics.TotalFailed)

	// A negação continua visível no log de falhas.
	failures := m.RecentFailures(5)
	assert.Len(t, failures, 1)
	assert.Equal(t, ErrorKindConfiguration, failures[0].ErrorKind)
}

func TestMonitorDegradesWhenStoreFails(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}

	m := NewMonitor(Limits{Daily: 100, Monthly: 100}, store, zerolog.Nop())
	entry := m.LogAttempt(successAttempt())
	assert.Equal(t, int64(1), entry.ID)
	assert.Equal(t, int64(1), m.MetricsSnapshot().TotalSent)
}

func TestGenerateReportContents(t *testing.T) {
	m := newTestMonitor(Limits{Daily: 10, Monthly: 100})

	m.LogAttempt(successAttempt())
	m.LogAttempt(Attempt{
		Type:      entity.KindAdminNotification,
		Recipient: "admin@example.com",
		Subject:   "alert",
		Success:   false,
		Error:     "smtp send timed out",
		ErrorKind: ErrorKindNetwork,
	})

	report := m.GenerateReport()
	assert.Contains(t, report, "sent: 1  failed: 1  success rate: 50.0%")
	assert.Contains(t, report, "NETWORK_ERROR: 1")
	assert.Contains(t, report, "user_confirmation: 1")
	assert.Contains(t, report, "Recent failures:")
	assert.Contains(t, report, "admin@example.com")
	assert.Contains(t, report, "2/10 (20.0%)")
}

func TestReportShowsActiveThresholdWarnings(t *testing.T) {
	m := newTestMonitor(Limits{Daily: 5, Monthly: 100})
	for i := 0; i < 4; i++ {
		m.LogAttempt(successAttempt())
	}

	report := m.GenerateReport()
	assert.Contains(t, report, "daily volume above 80% (4/5)")

	m.LogAttempt(successAttempt())
	report = m.GenerateReport()
	assert.Contains(t, report, "daily volume limit reached (5/5)")
}
