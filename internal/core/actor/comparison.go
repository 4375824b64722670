package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/berfenger/descview/internal/core/service"
	. "github.com/berfenger/descview/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// ComparisonActor owns one viewer session. The selection, the detail cache
// and the snapshot counter are only touched from this actor, so the session
// needs no locking.
type ComparisonActor struct {
	ActorWithStates
	stash         *Stash
	session       *service.Session
	sessionID     string
	upstreamActor *actor.PID
	catalogActor  *actor.PID
	fetchTimeout  time.Duration
	idleTimeout   time.Duration
	logger        *zap.Logger
}

func NewComparisonActor(sessionID string, upstreamActor, catalogActor *actor.PID, fetchTimeout, idleTimeout time.Duration, logger *zap.Logger) *ComparisonActor {
	act := &ComparisonActor{
		ActorWithStates: NewActorWithStates(),
		stash:           &Stash{},
		session:         service.NewSession(),
		sessionID:       sessionID,
		upstreamActor:   upstreamActor,
		catalogActor:    catalogActor,
		fetchTimeout:    fetchTimeout,
		idleTimeout:     idleTimeout,
		logger:          ActorLogger(domain.ACTOR_ID_SESSION, logger).With(zap.String("session", sessionID)),
	}
	act.Become(ComparisonIdleState{
		actor: act,
	})
	return act
}

// Idle state: nothing selected

type ComparisonIdleState struct {
	actor *ComparisonActor
}

func (state ComparisonIdleState) Name() string {
	return string(domain.SESSION_IDLE)
}

func (state ComparisonIdleState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("session@idle started")
		if state.actor.idleTimeout > 0 {
			ctx.SetReceiveTimeout(state.actor.idleTimeout)
		}
	case domain.GetComparisonRequest:
		state.actor.respondComparison(ctx, msg)
	case domain.GetSpecsRequest:
		state.actor.respondSpecs(ctx, msg)
	default:
		state.actor.receiveCommon(ctx, state.Name())
	}
}

// Fetching state: a batch for the current snapshot is in flight. Matrix
// reads wait for it so partial batches are never shown.

type ComparisonFetchingState struct {
	actor *ComparisonActor
}

func (state ComparisonFetchingState) Name() string {
	return string(domain.SESSION_FETCHING)
}

func (state ComparisonFetchingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetComparisonRequest, domain.GetSpecsRequest:
		state.actor.logger.Debug("session@fetching stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	default:
		state.actor.receiveCommon(ctx, state.Name())
	}
}

// Ready state: every selected device has a ready or failed cache entry

type ComparisonReadyState struct {
	actor *ComparisonActor
}

func (state ComparisonReadyState) Name() string {
	return string(domain.SESSION_READY)
}

func (state ComparisonReadyState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetComparisonRequest:
		state.actor.logger.Debug("session@ready GetComparisonRequest")
		state.actor.respondComparison(ctx, msg)
	case domain.GetSpecsRequest:
		state.actor.logger.Debug("session@ready GetSpecsRequest")
		state.actor.respondSpecs(ctx, msg)
	default:
		state.actor.receiveCommon(ctx, state.Name())
	}
}

// receiveCommon handles the messages every state answers the same way.
func (a *ComparisonActor) receiveCommon(ctx actor.Context, stateName string) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SESSION,
			Healthy: true,
			State:   stateName,
		})
	case domain.AddDeviceRequest:
		a.logger.Debug("session@"+stateName+" AddDeviceRequest", zap.Stringer("ref", msg.Ref))
		plan, err := a.session.Add(msg.Ref)
		if err != nil {
			a.logger.Debug("session@"+stateName+" add rejected", zap.Stringer("ref", msg.Ref), zap.Error(err))
			ForRequest(msg).Respond(ctx, a.selectionResponse(err))
			return
		}
		a.afterChange(ctx, plan)
		ForRequest(msg).Respond(ctx, a.selectionResponse(nil))
	case domain.RemoveDeviceRequest:
		a.logger.Debug("session@"+stateName+" RemoveDeviceRequest", zap.Stringer("ref", msg.Ref))
		a.afterChange(ctx, a.session.Remove(msg.Ref))
		ForRequest(msg).Respond(ctx, a.selectionResponse(nil))
	case domain.ClearSelectionRequest:
		a.logger.Debug("session@" + stateName + " ClearSelectionRequest")
		a.session.Clear()
		a.afterChange(ctx, nil)
		ForRequest(msg).Respond(ctx, a.selectionResponse(nil))
	case domain.RefreshSelectionRequest:
		a.logger.Debug("session@" + stateName + " RefreshSelectionRequest")
		a.afterChange(ctx, a.session.Refresh())
		ForRequest(msg).Respond(ctx, a.selectionResponse(nil))
	case domain.GetSelectionRequest:
		ForRequest(msg).Respond(ctx, a.selectionResponse(nil))
	case domain.GetCandidatesRequest:
		a.logger.Debug("session@"+stateName+" GetCandidatesRequest", zap.String("query", msg.Query))
		a.candidates(ctx, msg)
	case domain.FetchDescriptorsResponse:
		if !a.session.Apply(msg.Snapshot, msg.Results) {
			a.logger.Debug("session@"+stateName+" discarding stale batch",
				zap.Uint64("batch", uint64(msg.Snapshot)), zap.Uint64("current", uint64(a.session.Snapshot())))
			return
		}
		a.logger.Debug("session@"+stateName+" batch applied",
			zap.Uint64("snapshot", uint64(msg.Snapshot)), zap.Int("devices", len(msg.Results)))
		a.transition(ctx)
	case *actor.ReceiveTimeout:
		a.logger.Info("session@" + stateName + " idle, stopping")
		ctx.Stop(ctx.Self())
	case *actor.Stopping:
		a.stash.Drop(ctx, func(msg any) any {
			return domain.ErrorResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: domain.ErrSessionNotFound}}
		})
	default:
		a.logger.Debug("session@"+stateName+" recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// afterChange issues the fetch plan of a selection change, if any, and
// moves to the state matching the session.
func (a *ComparisonActor) afterChange(ctx actor.Context, plan *domain.FetchPlan) {
	if plan != nil {
		a.logger.Debug("session@fetching issue batch",
			zap.Uint64("snapshot", uint64(plan.Snapshot)), zap.Int("devices", len(plan.Refs)))
		batch := *plan
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(a.upstreamActor, domain.FetchDescriptorsRequest{Plan: batch}, a.fetchTimeout+2*time.Second), func(err error) any {
			results := make([]domain.FetchResult, len(batch.Refs))
			for i, ref := range batch.Refs {
				results[i] = domain.FetchResult{Ref: ref, Err: err}
			}
			return domain.FetchDescriptorsResponse{
				Snapshot: batch.Snapshot,
				Results:  results,
			}
		})
	}
	a.transition(ctx)
}

func (a *ComparisonActor) transition(ctx actor.Context) {
	current := a.StateName()
	next := string(a.session.State())
	if current == next {
		return
	}
	switch a.session.State() {
	case domain.SESSION_IDLE:
		a.Become(ComparisonIdleState{actor: a})
	case domain.SESSION_FETCHING:
		a.Become(ComparisonFetchingState{actor: a})
	case domain.SESSION_READY:
		a.Become(ComparisonReadyState{actor: a})
	}
	a.logger.Debug("session@" + next + " entered from " + current)
	if current == string(domain.SESSION_FETCHING) {
		a.stash.UnstashAll(ctx)
	}
}

func (a *ComparisonActor) selectionResponse(err error) domain.SelectionResponse {
	return domain.SelectionResponse{
		ActorResponseMixIn: domain.ActorResponseMixIn{
			ResponseError: err,
		},
		State:    a.session.State(),
		Snapshot: a.session.Snapshot(),
		Devices:  a.session.Selection(),
	}
}

func (a *ComparisonActor) respondComparison(ctx actor.Context, msg domain.GetComparisonRequest) {
	ForRequest(msg).Respond(ctx, domain.GetComparisonResponse{
		State:    a.session.State(),
		Snapshot: a.session.Snapshot(),
		Matrix:   a.session.Comparison(),
		Failures: a.session.Failures(),
	})
}

func (a *ComparisonActor) respondSpecs(ctx actor.Context, msg domain.GetSpecsRequest) {
	ForRequest(msg).Respond(ctx, domain.GetSpecsResponse{
		State:    a.session.State(),
		Snapshot: a.session.Snapshot(),
		Matrix:   a.session.Specs(),
	})
}

// candidates filters the catalog against the selection as it is when the
// catalog answers.
func (a *ComparisonActor) candidates(ctx actor.Context, msg domain.GetCandidatesRequest) {
	replyTo := ForRequest(msg).ReplyTo(ctx)
	query := msg.Query
	future := ctx.RequestFuture(a.catalogActor, domain.GetCatalogRequest{}, a.fetchTimeout)
	ctx.ReenterAfter(future, func(res any, err error) {
		resp := domain.GetCandidatesResponse{}
		catalog, ok := res.(domain.GetCatalogResponse)
		switch {
		case err != nil:
			resp.ResponseError = err
		case !ok:
			resp.ResponseError = fmt.Errorf("unexpected catalog response %T", res)
		default:
			resp.Devices = service.FilterCandidates(catalog.Devices, a.session.Selection(), query)
		}
		if replyTo != nil {
			ctx.Send(replyTo, resp)
		}
	})
}
