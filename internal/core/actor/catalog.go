package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/descview/internal/core/domain"
	. "github.com/berfenger/descview/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// CatalogActor holds the device catalog of every format. Reads are served
// from the last good load; a failed reload keeps the previous list.
type CatalogActor struct {
	ActorWithStates
	stash         *Stash
	upstreamActor *actor.PID
	fetchTimeout  time.Duration
	catalogs      map[domain.Format][]domain.DeviceSummary
	failures      map[domain.Format]string
	loadedAt      map[domain.Format]time.Time
	pending       map[domain.Format]bool
	logger        *zap.Logger
}

func NewCatalogActor(upstreamActor *actor.PID, fetchTimeout time.Duration, logger *zap.Logger) *CatalogActor {
	act := &CatalogActor{
		ActorWithStates: NewActorWithStates(),
		stash:           &Stash{},
		upstreamActor:   upstreamActor,
		fetchTimeout:    fetchTimeout,
		catalogs:        make(map[domain.Format][]domain.DeviceSummary),
		failures:        make(map[domain.Format]string),
		loadedAt:        make(map[domain.Format]time.Time),
		pending:         make(map[domain.Format]bool),
		logger:          ActorLogger(domain.ACTOR_ID_CATALOG, logger),
	}
	act.Become(CatalogLoadingState{
		actor: act,
	})
	return act
}

// Loading state: first load, reads are stashed

type CatalogLoadingState struct {
	actor *CatalogActor
}

func (state CatalogLoadingState) Name() string {
	return "loading"
}

func (state CatalogLoadingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("catalog@loading started")
		state.actor.reload(ctx, "")
	case domain.ListCatalogResponse:
		state.actor.applyCatalog(ctx, msg)
		if len(state.actor.pending) == 0 {
			state.actor.Become(CatalogReadyState{
				actor: state.actor,
			})
			state.actor.stash.UnstashAll(ctx)
		}
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_CATALOG,
			Healthy: true,
			State:   state.Name(),
		})
	default:
		state.actor.logger.Debug("catalog@loading stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Ready state

type CatalogReadyState struct {
	actor *CatalogActor
}

func (state CatalogReadyState) Name() string {
	return "ready"
}

func (state CatalogReadyState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.actor.logger.Debug("catalog@ready ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_CATALOG,
			Healthy: true,
			State:   state.Name(),
		})
	case domain.GetCatalogRequest:
		state.actor.logger.Debug("catalog@ready GetCatalogRequest", zap.String("format", string(msg.Format)))
		ForRequest(msg).Respond(ctx, state.actor.snapshot(msg.Format))
	case domain.RefreshCatalogRequest:
		state.actor.logger.Info("catalog@ready RefreshCatalogRequest", zap.String("format", string(msg.Format)))
		state.actor.reload(ctx, msg.Format)
		ForRequest(msg).Respond(ctx, domain.RefreshCatalogResponse{})
	case domain.ListCatalogResponse:
		state.actor.applyCatalog(ctx, msg)
	default:
		state.actor.logger.Debug("catalog@ready recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// reload asks the upstream actor for the catalog of format, or of every
// format when empty. Formats already loading are not requested twice.
func (a *CatalogActor) reload(ctx actor.Context, format domain.Format) {
	formats := domain.Formats
	if format != "" {
		formats = []domain.Format{format}
	}
	for _, f := range formats {
		if a.pending[f] {
			continue
		}
		a.pending[f] = true
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(a.upstreamActor, domain.ListCatalogRequest{Format: f}, a.fetchTimeout+time.Second), func(err error) any {
			return domain.ListCatalogResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
				Format: f,
			}
		})
	}
}

func (a *CatalogActor) applyCatalog(ctx actor.Context, msg domain.ListCatalogResponse) {
	delete(a.pending, msg.Format)
	event := domain.CatalogRefreshEvent{
		Format: msg.Format,
		At:     time.Now(),
	}
	if msg.HasResponseError() {
		a.logger.Error("catalog@"+a.StateName()+" catalog load failed", zap.String("format", string(msg.Format)), zap.Error(msg.GetResponseError()))
		a.failures[msg.Format] = msg.GetResponseError().Error()
		event.Error = a.failures[msg.Format]
		event.Count = len(a.catalogs[msg.Format])
	} else {
		a.logger.Info("catalog@"+a.StateName()+" catalog loaded", zap.String("format", string(msg.Format)), zap.Int("devices", len(msg.Devices)))
		a.catalogs[msg.Format] = msg.Devices
		a.loadedAt[msg.Format] = event.At
		delete(a.failures, msg.Format)
		event.Count = len(msg.Devices)
	}
	ctx.ActorSystem().EventStream.Publish(event)
}

func (a *CatalogActor) snapshot(format domain.Format) domain.GetCatalogResponse {
	resp := domain.GetCatalogResponse{
		Failures: make(map[domain.Format]string),
		LoadedAt: make(map[domain.Format]time.Time),
	}
	for _, f := range domain.Formats {
		if format != "" && f != format {
			continue
		}
		resp.Devices = append(resp.Devices, a.catalogs[f]...)
		if failure, ok := a.failures[f]; ok {
			resp.Failures[f] = failure
		}
		if at, ok := a.loadedAt[f]; ok {
			resp.LoadedAt[f] = at
		}
	}
	return resp
}
