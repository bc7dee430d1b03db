package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/praxis-payments/internal/entity"
)

type fakeChannel struct {
	mu    sync.Mutex
	calls []string
	errBy map[string]error
}

func (c *fakeChannel) Send(ctx context.Context, from, to, subject, body string) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, to)
	c.mu.Unlock()

	if err, ok := c.errBy[to]; ok {
		return "", err
	}
	return "<msg@test>", nil
}

func (c *fakeChannel) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func newTestDispatcher(channel DeliveryChannel, limits Limits) (*Dispatcher, *Monitor) {
	monitor := NewMonitor(limits, nil, zerolog.Nop())
	return NewDispatcher(channel, monitor, "no-reply@praxiscoaching.io", zerolog.Nop()), monitor
}

func TestDispatchAllSettledIndependence(t *testing.T) {
	channel := &fakeChannel{errBy: map[string]error{
		"admin@example.com": errors.New("550 rejected"),
	}}
	d, monitor := newTestDispatcher(channel, Limits{Daily: 100, Monthly: 100})

	results := d.Dispatch(context.Background(), []entity.NotificationJob{
		{Kind: entity.KindAdminNotification, Recipient: "admin@example.com", Subject: "s", Body: "b"},
		{Kind: entity.KindUserWelcome, Recipient: "user@example.com", Subject: "s", Body: "b"},
	})

	// Join all-settled: a falha do admin não derruba o job do usuário.
	assert.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.Equal(t, "<msg@test>", results[1].MessageID)

	metrics := monitor.MetricsSnapshot()
	assert.Equal(t, int64(1), metrics.TotalSent)
	assert.Equal(t, int64(1), metrics.TotalFailed)
}

func TestDispatchDeniedByLimiterSkipsChannel(t *testing.T) {
	channel := &fakeChannel{}
	d, monitor := newTestDispatcher(channel, Limits{Daily: 1, Monthly: 100})

	monitor.LogAttempt(Attempt{Type: entity.KindUserWelcome, Recipient: "x@y.io", Subject: "s", Success: true})

	results := d.Dispatch(context.Background(), []entity.NotificationJob{
		{Kind: entity.KindUserWelcome, Recipient: "user@example.com", Subject: "s", Body: "b"},
	})

	assert.False(t, results[0].Success)
	assert.Equal(t, ErrorKindConfiguration, results[0].ErrorKind)
	assert.Equal(t, 0, channel.callCount(), "denied send must never touch the channel")

	// Negação não queima orçamento: só a tentativa que chegou ao canal
	// conta no volume.
	metrics := monitor.MetricsSnapshot()
	assert.Equal(t, 1, metrics.DailyVolume)
	assert.Equal(t, 1, metrics.MonthlyVolume)
	assert.Equal(t, int64(1), metrics.TotalFailed)
}

func TestDispatchSkipsInvalidRecipient(t *testing.T) {
	channel := &fakeChannel{}
	d, monitor := newTestDispatcher(channel, Limits{Daily: 100, Monthly: 100})

	results := d.Dispatch(context.Background(), []entity.NotificationJob{
		{Kind: entity.KindUserConfirmation, Recipient: "not-an-email", Subject: "s", Body: "b"},
	})

	assert.True(t, results[0].Skipped)
	assert.Equal(t, ErrorKindTemplate, results[0].ErrorKind)
	assert.Equal(t, 0, channel.callCount())

	// Ainda assim a tentativa entra no log do monitor.
	assert.Equal(t, int64(1), monitor.MetricsSnapshot().TotalFailed)
}

func TestDispatchSkipsEmptySubject(t *testing.T) {
	channel := &fakeChannel{}
	d, _ := newTestDispatcher(channel, Limits{Daily: 100, Monthly: 100})

	results := d.Dispatch(context.Background(), []entity.NotificationJob{
		{Kind: entity.KindUserConfirmation, Recipient: "user@example.com", Body: "b"},
	})

	assert.True(t, results[0].Skipped)
	assert.Equal(t, 0, channel.callCount())
}

func TestDispatchNormalizesRecipient(t *testing.T) {
	channel := &fakeChannel{}
	d, _ := newTestDispatcher(channel, Limits{Daily: 100, Monthly: 100})

	results := d.Dispatch(context.Background(), []entity.NotificationJob{
		{Kind: entity.KindUserWelcome, Recipient: "  User@Example.COM ", Subject: "s", Body: "b"},
	})

	assert.True(t, results[0].Success)
	channel.mu.Lock()
	defer channel.mu.Unlock()
	assert.Equal(t, "user@example.com", channel.calls[0])
}

func TestDispatchEmptyJobList(t *testing.T) {
	d, _ := newTestDispatcher(&fakeChannel{}, Limits{Daily: 100, Monthly: 100})
	assert.Empty(t, d.Dispatch(context.Background(), nil))
}
