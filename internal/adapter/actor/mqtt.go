package actor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/berfenger/descview/internal/config"
	"github.com/berfenger/descview/internal/core/domain"
	"github.com/berfenger/descview/internal/mqtt"
	"github.com/berfenger/descview/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTActor publishes ticket events taken from the actor system event
// stream and hands inbound commands to its parent.
type MQTTActor struct {
	config         *config.Config
	behavior       actor.Behavior
	stash          *actorutil.Stash
	client         *mqtt.MQTTClient
	eventStreamSub *eventstream.Subscription
	logger         *zap.Logger
}

type MQTTConnected struct {
}

type MQTTSubscribed struct {
}

type MQTTConnectionLost struct {
	Error error
}

type OnEventStreamMessage struct {
	message any
}

type publishResult struct {
	Error error
}

type ParsedCommand struct {
	Command *mqtt.ParsedMQTTCommand
}

func NewMQTTActor(config *config.Config, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:   config,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MQTTActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MQTTActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("mqtt@starting started")
		self := ctx.Self()
		root := ctx.ActorSystem().Root

		// create MQTT client
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), func(_ pahomqtt.Client) {
		}, func(_ pahomqtt.Client, err error) {
			root.Send(self, MQTTConnectionLost{Error: err})
		})

		// connect to MQTT server
		state.client.Connect(func(err error) {
			if err != nil {
				root.Send(self, MQTTConnectionLost{Error: err})
			} else {
				root.Send(self, MQTTConnected{})
			}
		}, 10*time.Second)

	case MQTTConnected:
		state.logger.Debug("mqtt@starting connected")
		self := ctx.Self()
		root := ctx.ActorSystem().Root

		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_ONLINE, 0, true, func(error) {}, 500*time.Millisecond)

		// ticket events
		state.eventStreamSub = ctx.ActorSystem().EventStream.Subscribe(func(value any) {
			if isPublishedEvent(value) {
				root.Send(self, OnEventStreamMessage{message: value})
			}
		})

		// subscribe to MQTT command topic
		state.client.SubscribeToCommandTopic(func(c pahomqtt.Client, m pahomqtt.Message) {
			cmd, err := state.client.ParseMQTTCommand(m)
			if err == nil && cmd != nil {
				root.Send(self, ParsedCommand{Command: cmd})
			}
		}, func(err error) {
			if err != nil {
				root.Send(self, MQTTConnectionLost{Error: err})
			} else {
				root.Send(self, MQTTSubscribed{})
			}
		}, 1*time.Second)
	case MQTTSubscribed:
		// init completed, transition to default state
		state.logger.Debug("mqtt@starting subscribed")
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop(ctx)
	case *actor.Stopping:
		state.stop(ctx)
	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop(ctx)
	case *actor.Stopping:
		state.stop(ctx)
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case ParsedCommand:
		// route command to parent
		state.logger.Debug("mqtt@default parsedCommand", zap.Any("command", msg.Command))
		ctx.Send(ctx.Parent(), msg)
	case OnEventStreamMessage:
		switch event := msg.message.(type) {
		case domain.TicketEvent:
			state.logger.Debug("mqtt@default OnEventStreamMessage", zap.String("ticket", event.TicketID))
			state.publishJSON(ctx, state.client.TicketEventTopic(event.TicketID), event, false)
		case domain.CatalogRefreshEvent:
			state.logger.Debug("mqtt@default OnEventStreamMessage", zap.String("catalog", string(event.Format)))
			state.publishJSON(ctx, state.client.CatalogStateTopic(string(event.Format)), event, true)
		}
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("mqtt@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// isPublishedEvent filters the event stream down to the events bridged to
// MQTT. Anything else, dead letters included, is dropped before it reaches
// the actor.
func isPublishedEvent(value any) bool {
	switch value.(type) {
	case domain.TicketEvent, domain.CatalogRefreshEvent:
		return true
	}
	return false
}

func (state *MQTTActor) publishJSON(ctx actor.Context, topic string, value any, retain bool) {
	payload, err := json.Marshal(value)
	if err != nil {
		state.logger.Error("mqtt@default could not encode message", zap.String("topic", topic), zap.Error(err))
		return
	}
	state.logger.Sugar().Debugf("mqtt@publish: message publish %s => %s", topic, payload)
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	state.client.Publish(topic, string(payload), 1, retain, func(err error) {
		root.Send(self, publishResult{Error: err})
	}, 5*time.Second)
	state.behavior.BecomeStacked(state.PublishResultReceive)
}

func (state *MQTTActor) PublishResultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case publishResult:
		// log error and return to default state
		if msg.Error != nil {
			state.logger.Error("mqtt@publishing could not publish a message", zap.Error(msg.Error))
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashOldest(ctx)
	case *actor.Stopping:
		state.stop(ctx)
	default:
		state.logger.Debug("mqtt@publishing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) stop(ctx actor.Context) {
	state.logger.Debug("mqtt: disconnect")
	if state.eventStreamSub != nil {
		ctx.ActorSystem().EventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
	if state.client != nil {
		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_OFFLINE, 0, true, func(error) {}, 500*time.Millisecond)
		state.client.Disconnect(500 * time.Millisecond)
	}
}

// Dummy actor, no broker connection. Ticket events are written to published.
func NewTestMQTTActor(config *config.Config, logger *zap.Logger, published chan<- domain.TicketEvent) *MQTTActor {
	act := &MQTTActor{
		config:   config,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(func(ctx actor.Context) {
		act.DummyReceive(ctx, published)
	})
	return act
}

func (state *MQTTActor) DummyReceive(ctx actor.Context, published chan<- domain.TicketEvent) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		self := ctx.Self()
		root := ctx.ActorSystem().Root
		state.eventStreamSub = ctx.ActorSystem().EventStream.Subscribe(func(value any) {
			if isPublishedEvent(value) {
				root.Send(self, OnEventStreamMessage{message: value})
			}
		})
	case *actor.Stopping:
		if state.eventStreamSub != nil {
			ctx.ActorSystem().EventStream.Unsubscribe(state.eventStreamSub)
		}
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@dummy ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case ParsedCommand:
		ctx.Send(ctx.Parent(), msg)
	case OnEventStreamMessage:
		if event, ok := msg.message.(domain.TicketEvent); ok && published != nil {
			published <- event
		}
	}
}
