package actor

import (
	"errors"
	"fmt"
	"time"

	adactor "github.com/berfenger/descview/internal/adapter/actor"
	"github.com/berfenger/descview/internal/config"
	"github.com/berfenger/descview/internal/core/domain"
	. "github.com/berfenger/descview/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const SESSION_ACTOR_PREFIX = "session-"

type UpstreamActorProvider func() *adactor.UpstreamActor

type MQTTActorProvider func() *adactor.MQTTActor

// MasterActor supervises the upstream, catalog and MQTT actors and routes
// session requests to the comparison actor owning each session.
type MasterActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck    healthCheckResult
	upstreamActor         *actor.PID
	catalogActor          *actor.PID
	mqttActor             *actor.PID
	sessions              map[string]*actor.PID
	upstreamActorProvider UpstreamActorProvider
	mqttActorProvider     MQTTActorProvider
	supervisors           map[string]actor.SupervisorStrategy
	logger                *zap.Logger
}

type healthCheckResult struct {
	expected  map[string]bool
	healthy   map[string]bool
	received  int
	respondTo *actor.PID
}

// NewMasterActor builds the root actor. mqttActorProvider may be nil when
// MQTT is disabled.
func NewMasterActor(config config.Config, upstreamActorProvider UpstreamActorProvider, mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterActor {
	act := &MasterActor{
		config:                config,
		behavior:              actor.NewBehavior(),
		stash:                 &Stash{},
		sessions:              make(map[string]*actor.PID),
		upstreamActorProvider: upstreamActorProvider,
		mqttActorProvider:     mqttActorProvider,
		logger:                ActorLogger(domain.ACTOR_ID_MASTER, logger),
	}
	act.supervisors = map[string]actor.SupervisorStrategy{
		domain.ACTOR_ID_UPSTREAM: actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second),
		domain.ACTOR_ID_CATALOG:  actor.NewOneForOneStrategy(3, 10*time.Second, act.restartDecider),
		domain.ACTOR_ID_MQTT:     actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second),
		SESSION_ACTOR_PREFIX:     actor.NewOneForOneStrategy(0, 0, act.stopDecider),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

// HandleFailure supervises the children. A failed session is stopped, so
// the client gets ErrSessionNotFound instead of a silently emptied selection.
func (state *MasterActor) HandleFailure(actorSystem *actor.ActorSystem, supervisor actor.Supervisor, child *actor.PID,
	rs *actor.RestartStatistics, reason interface{}, message interface{}) {
	strategy := state.supervisors[SESSION_ACTOR_PREFIX]
	for id, pid := range state.children() {
		if pid != nil && pid.Equal(child) {
			strategy = state.supervisors[id]
			break
		}
	}
	strategy.HandleFailure(actorSystem, supervisor, child, rs, reason, message)
}

func (state *MasterActor) restartDecider(reason interface{}) actor.Directive {
	state.logger.Warn("master@supervisor restarting child", zap.Any("reason", reason))
	return actor.RestartDirective
}

func (state *MasterActor) stopDecider(reason interface{}) actor.Directive {
	state.logger.Warn("master@supervisor stopping session", zap.Any("reason", reason))
	return actor.StopDirective
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		// start Upstream child
		upstreamActorPID, err := state.startUpstreamActor(ctx)
		if err != nil {
			panic(err)
		}
		state.upstreamActor = upstreamActorPID

		// start Catalog child
		catalogActorPID, err := state.startCatalogActor(ctx)
		if err != nil {
			panic(err)
		}
		state.catalogActor = catalogActorPID

		// start MQTT child
		if state.mqttActorProvider != nil {
			mqttActorPID, err := state.startMQTTActor(ctx)
			if err != nil {
				panic(err)
			}
			state.mqttActor = mqttActorPID
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset(state.children())
		state.currentHealthCheck.respondTo = ctx.Sender()
		for id, pid := range state.children() {
			childID := id
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(pid, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
				return domain.ActorHealthResponse{
					Id:      childID,
					Healthy: false,
				}
			})
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.CreateSessionRequest:
		id := uuid.NewString()
		pid, err := state.startSessionActor(ctx, id)
		if err != nil {
			state.logger.Error("master@default session spawn failed", zap.Error(err))
			ForRequest(msg).Respond(ctx, domain.CreateSessionResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			})
			return
		}
		state.sessions[id] = pid
		state.logger.Info("master@default session created", zap.String("session", id), zap.Int("sessions", len(state.sessions)))
		ForRequest(msg).Respond(ctx, domain.CreateSessionResponse{SessionID: id})
	case domain.SessionRequest:
		pid, ok := state.sessions[msg.Session()]
		if !ok {
			state.logger.Debug("master@default unknown session", zap.String("session", msg.Session()))
			ForRequest(msg).Respond(ctx, domain.ErrorResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrSessionNotFound},
			})
			return
		}
		ctx.Forward(pid)
	case domain.GetCatalogRequest, domain.RefreshCatalogRequest:
		ctx.Forward(state.catalogActor)
	case domain.GetDescriptorRequest:
		ctx.Forward(state.upstreamActor)
	case adactor.ParsedCommand:
		// commands arrive from the mqtt child
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command != nil {
			cmd, err := ParsedMQTTCommandToCommand(*msg.Command)
			if err != nil {
				state.logger.Warn("master@default invalid command", zap.Error(err))
				return
			}
			switch pcmd := cmd.(type) {
			case domain.RefreshCatalogRequest:
				ctx.Send(state.catalogActor, pcmd)
			}
		}
	case *actor.Terminated:
		state.onTerminated(msg)
	default:
		state.logger.Debug("master@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		ctx.CancelReceiveTimeout()
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.record(msg)
		if state.currentHealthCheck.allReceived() {
			ctx.CancelReceiveTimeout()
			state.currentHealthCheck.respond(ctx)
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		}
	case *actor.Terminated:
		state.onTerminated(msg)
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) onTerminated(msg *actor.Terminated) {
	switch {
	case msg.Who.Equal(state.upstreamActor):
		state.logger.Error("master@default upstream terminated")
		panic(errors.New("upstream terminated"))
	case msg.Who.Equal(state.catalogActor):
		state.logger.Error("master@default catalog terminated")
		panic(errors.New("catalog terminated"))
	case state.mqttActor != nil && msg.Who.Equal(state.mqttActor):
		state.logger.Error("master@default mqtt terminated")
		state.mqttActor = nil
	default:
		for id, pid := range state.sessions {
			if pid.Equal(msg.Who) {
				delete(state.sessions, id)
				state.logger.Info("master@default session closed", zap.String("session", id), zap.Int("sessions", len(state.sessions)))
				return
			}
		}
	}
}

func (state *MasterActor) children() map[string]*actor.PID {
	children := map[string]*actor.PID{
		domain.ACTOR_ID_UPSTREAM: state.upstreamActor,
		domain.ACTOR_ID_CATALOG:  state.catalogActor,
	}
	if state.mqttActor != nil {
		children[domain.ACTOR_ID_MQTT] = state.mqttActor
	}
	return children
}

func (state *MasterActor) startUpstreamActor(ctx actor.Context) (*actor.PID, error) {

	upstreamProps := actor.PropsFromProducer(func() actor.Actor {
		return state.upstreamActorProvider()
	})
	return ctx.SpawnNamed(upstreamProps, domain.ACTOR_ID_UPSTREAM)
}

func (state *MasterActor) startCatalogActor(ctx actor.Context) (*actor.PID, error) {

	catalogProps := actor.PropsFromProducer(func() actor.Actor {
		return NewCatalogActor(state.upstreamActor, state.config.Upstream.Timeout(), state.logger)
	})
	return ctx.SpawnNamed(catalogProps, domain.ACTOR_ID_CATALOG)
}

func (state *MasterActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider()
	})
	return ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
}

func (state *MasterActor) startSessionActor(ctx actor.Context, id string) (*actor.PID, error) {

	sessionProps := actor.PropsFromProducer(func() actor.Actor {
		return NewComparisonActor(id, state.upstreamActor, state.catalogActor,
			state.config.Compare.FetchTimeout(), state.config.Compare.SessionIdle(), state.logger)
	})
	return ctx.SpawnNamed(sessionProps, SESSION_ACTOR_PREFIX+id)
}

func (state *healthCheckResult) reset(children map[string]*actor.PID) {
	state.expected = make(map[string]bool, len(children))
	for id := range children {
		state.expected[id] = true
	}
	state.healthy = make(map[string]bool, len(children))
	state.received = 0
}

func (state *healthCheckResult) record(resp domain.ActorHealthResponse) {
	if !state.expected[resp.Id] {
		return
	}
	state.received++
	if resp.Healthy {
		state.healthy[resp.Id] = true
	}
}

func (state *healthCheckResult) allReceived() bool {
	return state.received >= len(state.expected)
}

func (state *healthCheckResult) allHealthy() bool {
	for id := range state.expected {
		if !state.healthy[id] {
			return false
		}
	}
	return true
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
