package notify

import (
	"context"

	"medibook/pkg/kafka"
	"medibook/pkg/logger"
	"medibook/pkg/model"
)

// Event types published on the appointment events topic.
const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
)

// Notifier informs the notification collaborator about appointment events.
// Delivery is best effort: implementations must never return an error that
// would fail the booking or cancellation that triggered it, which is why the
// interface has no error returns.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt *model.Appointment)
	AppointmentCancelled(ctx context.Context, appt *model.Appointment)
}

type kafkaNotifier struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaNotifier(producer *kafka.Producer, log *logger.Logger) Notifier {
	return &kafkaNotifier{
		producer: producer,
		log:      log,
	}
}

func (n *kafkaNotifier) AppointmentBooked(ctx context.Context, appt *model.Appointment) {
	n.publish(ctx, EventAppointmentBooked, appt)
}

func (n *kafkaNotifier) AppointmentCancelled(ctx context.Context, appt *model.Appointment) {
	n.publish(ctx, EventAppointmentCancelled, appt)
}

func (n *kafkaNotifier) publish(ctx context.Context, eventType string, appt *model.Appointment) {
	msg := kafka.NewMessage().
		WithKey(appt.ID).
		WithEventType(eventType).
		WithSource("medibook").
		WithValue(appt).
		Build()

	if err := n.producer.Publish(ctx, msg); err != nil {
		// Best effort only. The appointment operation already committed.
		n.log.Warn("Failed to publish appointment event",
			"event_type", eventType,
			"appointment_id", appt.ID,
			"error", err,
		)
	}
}

type noopNotifier struct{}

// NewNoopNotifier returns a Notifier that drops all events. Used when
// notifications are disabled by configuration and in tests.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) AppointmentBooked(context.Context, *model.Appointment) {}
func (noopNotifier) AppointmentCancelled(context.Context, *model.Appointment) {}
