package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"spa-booking-be/internal/pkg/logger"
	"spa-booking-be/internal/pkg/mailer"
	"spa-booking-be/pkg/events"
	"spa-booking-be/pkg/notify"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (p *capturePublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, event.EventType())
	return p.err
}

func (p *capturePublisher) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.DoctorReminder
}

func (m *captureMailer) SendDoctorReminder(r mailer.DoctorReminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, r)
	return nil
}

func (m *captureMailer) reminders() []mailer.DoctorReminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.DoctorReminder(nil), m.sent...)
}

func TestConsumerForwardsAndMails(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := &capturePublisher{err: errors.New("nats down")}
	mail := &captureMailer{}
	consumer := NewConsumerService(pubSub, notify.Topic, publisher, mail, logger.NewNop())
	require.NoError(t, consumer.Consume(ctx))

	n := notify.NewBusNotifier(pubSub, notify.Topic, nil)
	now := time.Now()

	require.NoError(t, pubSub.Publish(notify.Topic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	n.Notify(ctx, events.New(events.AppointmentConfirmed, map[string]interface{}{"appointment_id": "a-1"}, now))
	n.Notify(ctx, events.New(events.DoctorReminder, map[string]interface{}{
		"appointment_id": "a-2",
		"doctor_email":   "doc@spa.test",
		"end_time":       "2026-03-11T10:00:00Z",
		"message":        "please close it",
	}, now))
	n.Notify(ctx, events.New(events.DoctorReminder, map[string]interface{}{"appointment_id": "a-3"}, now))

	assert.Eventually(t, func() bool { return len(publisher.seen()) == 3 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{events.AppointmentConfirmed, events.DoctorReminder, events.DoctorReminder}, publisher.seen())

	sent := mail.reminders()
	require.Len(t, sent, 1)
	assert.Equal(t, "doc@spa.test", sent[0].ToEmail)
	assert.Equal(t, "a-2", sent[0].AppointmentId)
	assert.Equal(t, "please close it", sent[0].Message)
}

func TestConsumerWithoutSinks(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumerService(pubSub, notify.Topic, nil, nil, logger.NewNop())
	require.NoError(t, consumer.Consume(ctx))

	n := notify.NewBusNotifier(pubSub, notify.Topic, nil)
	// must not panic with no publisher and no mailer
	n.Notify(ctx, events.New(events.DoctorReminder, map[string]interface{}{"doctor_email": "doc@spa.test"}, time.Now()))
	time.Sleep(50 * time.Millisecond)
}

func TestStr(t *testing.T) {
	assert.Equal(t, "", str(nil))
	assert.Equal(t, "x", str("x"))
	assert.Equal(t, "42", str(42))
}
