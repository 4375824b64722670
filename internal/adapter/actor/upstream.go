package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/berfenger/descview/internal/core/port"
	"github.com/berfenger/descview/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// batch timeout on top of the per-device fetch timeout
const batchTimeoutMargin = 500 * time.Millisecond

// UpstreamActor runs catalog and descriptor fetches against the device
// source in background tasks and routes the settled results back to the
// requester. Fetches from different requesters run concurrently.
type UpstreamActor struct {
	behavior     actor.Behavior
	stash        *actorutil.Stash
	source       port.DeviceSource
	fetchTimeout time.Duration
	inFlight     int
	logger       *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewUpstreamActor(source port.DeviceSource, fetchTimeout time.Duration, logger *zap.Logger) *UpstreamActor {
	act := &UpstreamActor{
		source:       source,
		fetchTimeout: fetchTimeout,
		behavior:     actor.NewBehavior(),
		stash:        &actorutil.Stash{},
		logger:       actorutil.ActorLogger(domain.ACTOR_ID_UPSTREAM, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *UpstreamActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *UpstreamActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("upstream@starting started")
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("upstream@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *UpstreamActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("upstream@default ActorHealthRequest")
		healthState := "idle"
		if state.inFlight > 0 {
			healthState = fmt.Sprintf("fetching(%d)", state.inFlight)
		}
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_UPSTREAM,
			Healthy: true,
			State:   healthState,
		})
	case domain.ListCatalogRequest:
		state.logger.Debug("upstream@default ListCatalogRequest", zap.String("format", string(msg.Format)))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		format := msg.Format
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*domain.ListCatalogResponse, error) {
			return state.listCatalog(format)
		}), mapTaskResult[domain.ListCatalogResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.ListCatalogResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
					Format: format,
				},
				replyTo: sender,
			}
		}).WithTimeout(state.fetchTimeout + batchTimeoutMargin).PipeTo(ctx.Self())
		state.inFlight++
	case domain.FetchDescriptorsRequest:
		state.logger.Debug("upstream@default FetchDescriptorsRequest",
			zap.Uint64("snapshot", uint64(msg.Plan.Snapshot)), zap.Int("devices", len(msg.Plan.Refs)))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		plan := msg.Plan
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.FetchDescriptorsResponse {
			return state.fetchBatch(plan)
		}), mapTaskResult[domain.FetchDescriptorsResponse](sender)).Recover(func(err error) backgroundTaskResult {
			// the batch still settles: every device of the plan fails
			return backgroundTaskResult{
				message: failedBatch(plan, err),
				replyTo: sender,
			}
		}).WithTimeout(state.fetchTimeout + batchTimeoutMargin).PipeTo(ctx.Self())
		state.inFlight++
	case domain.GetDescriptorRequest:
		state.logger.Debug("upstream@default GetDescriptorRequest", zap.Stringer("ref", msg.Ref))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		ref := msg.Ref
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*domain.GetDescriptorResponse, error) {
			return state.getDescriptor(ref)
		}), mapTaskResult[domain.GetDescriptorResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetDescriptorResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(state.fetchTimeout + batchTimeoutMargin).PipeTo(ctx.Self())
		state.inFlight++
	case backgroundTaskResult:
		state.logger.Debug("upstream@default backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		state.inFlight--
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
	default:
		state.logger.Debug("upstream@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *UpstreamActor) listCatalog(format domain.Format) (*domain.ListCatalogResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), state.fetchTimeout)
	defer cancel()
	devices, err := state.source.ListDevices(ctx, format)
	if err != nil {
		state.logger.Warn("upstream@default catalog fetch failed", zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}
	return &domain.ListCatalogResponse{
		Format:  format,
		Devices: devices,
	}, nil
}

func (state *UpstreamActor) getDescriptor(ref domain.DeviceRef) (*domain.GetDescriptorResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), state.fetchTimeout)
	defer cancel()
	d, err := state.source.FetchDescriptor(ctx, ref)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDeviceNotFound, ref)
	}
	return &domain.GetDescriptorResponse{Descriptor: d}, nil
}

// fetchBatch fetches every device of the plan in parallel and returns once
// all of them settled. Failures are reported per device.
func (state *UpstreamActor) fetchBatch(plan domain.FetchPlan) *domain.FetchDescriptorsResponse {
	results := make([]domain.FetchResult, len(plan.Refs))
	var g errgroup.Group
	for i, ref := range plan.Refs {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), state.fetchTimeout)
			defer cancel()
			d, err := state.source.FetchDescriptor(ctx, ref)
			if err != nil {
				state.logger.Warn("upstream@default descriptor fetch failed", zap.Stringer("ref", ref), zap.Error(err))
			}
			results[i] = domain.FetchResult{Ref: ref, Descriptor: d, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return &domain.FetchDescriptorsResponse{
		Snapshot: plan.Snapshot,
		Results:  results,
	}
}

func failedBatch(plan domain.FetchPlan, err error) domain.FetchDescriptorsResponse {
	results := make([]domain.FetchResult, len(plan.Refs))
	for i, ref := range plan.Refs {
		results[i] = domain.FetchResult{Ref: ref, Err: err}
	}
	return domain.FetchDescriptorsResponse{
		Snapshot: plan.Snapshot,
		Results:  results,
	}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
