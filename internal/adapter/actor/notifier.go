package actor

import (
	"github.com/berfenger/descview/internal/core/domain"

	"github.com/asynkron/protoactor-go/eventstream"
)

// EventStreamNotifier hands ticket events to the actor system event stream,
// where the MQTT actor picks them up when enabled.
type EventStreamNotifier struct {
	stream *eventstream.EventStream
}

func NewEventStreamNotifier(stream *eventstream.EventStream) *EventStreamNotifier {
	return &EventStreamNotifier{stream: stream}
}

func (n *EventStreamNotifier) Notify(event domain.TicketEvent) {
	n.stream.Publish(event)
}
