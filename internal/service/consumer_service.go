package service

import (
	"context"
	"fmt"

	"spa-booking-be/internal/pkg/logger"
	"spa-booking-be/internal/pkg/mailer"
	"spa-booking-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher forwards events to an external bus. *nats.Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process notification topic. Every message is acked:
// notifications are fire-and-forget and a failed delivery is only logged.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	publisher  EventPublisher
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	publisher EventPublisher,
	mailer mailer.IEmailService,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		publisher:  publisher,
		mailer:     mailer,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("NOTIFY", "Dropping undecodable notification", map[string]interface{}{
			"messageId": msg.UUID,
			"error":     err.Error(),
		})
		return
	}

	if cs.publisher != nil {
		if err := cs.publisher.Publish(ctx, event); err != nil {
			cs.logger.Warn("NOTIFY", "Failed to forward event", map[string]interface{}{
				"type":  event.Type,
				"error": err.Error(),
			})
		}
	}

	if event.Type == events.DoctorReminder {
		cs.remindDoctor(event)
	}
}

func (cs *consumerService) remindDoctor(event events.BaseEvent) {
	email := str(event.Data["doctor_email"])
	if cs.mailer == nil || email == "" {
		cs.logger.Debug("NOTIFY", "Doctor reminder not mailed", map[string]interface{}{
			"appointmentId": str(event.Data["appointment_id"]),
		})
		return
	}

	err := cs.mailer.SendDoctorReminder(mailer.DoctorReminder{
		ToEmail:       email,
		AppointmentId: str(event.Data["appointment_id"]),
		EndTime:       str(event.Data["end_time"]),
		Message:       str(event.Data["message"]),
	})
	if err != nil {
		cs.logger.Warn("NOTIFY", "Doctor reminder email failed", map[string]interface{}{
			"appointmentId": str(event.Data["appointment_id"]),
			"error":         err.Error(),
		})
		return
	}
	cs.logger.Info("NOTIFY", "Doctor reminder emailed", map[string]interface{}{
		"appointmentId": str(event.Data["appointment_id"]),
	})
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
