package notify

import (
	"context"
	"sync"

	"spa-booking-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const Topic = "spa.notifications"

// Notifier is fire-and-forget. Delivery failures never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, event events.Event)
}

// BusNotifier publishes events on an in-process watermill topic.
type BusNotifier struct {
	publisher message.Publisher
	topic     string
	onError   func(event events.Event, err error)
}

func NewBusNotifier(publisher message.Publisher, topic string, onError func(events.Event, error)) *BusNotifier {
	if topic == "" {
		topic = Topic
	}
	return &BusNotifier{publisher: publisher, topic: topic, onError: onError}
}

func (n *BusNotifier) Notify(ctx context.Context, event events.Event) {
	payload, err := events.Encode(event)
	if err == nil {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("type", event.EventType())
		err = n.publisher.Publish(n.topic, msg)
	}
	if err != nil && n.onError != nil {
		n.onError(event, err)
	}
}

// Recorder keeps every notified event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(ctx context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types lists recorded event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}
