package actor

import (
	"errors"
	"testing"
	"time"

	adactor "github.com/berfenger/descview/internal/adapter/actor"
	"github.com/berfenger/descview/internal/core/domain"
	"github.com/berfenger/descview/internal/mqtt"
	"github.com/berfenger/descview/internal/util"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func spawnMaster(t *testing.T, as *actor.ActorSystem, withMQTT bool) *actor.PID {
	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	source := fixtureSource(t)
	var mqttProvider MQTTActorProvider
	if withMQTT {
		published := make(chan domain.TicketEvent, 8)
		mqttProvider = func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger, published)
		}
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterActor(cfg, func() *adactor.UpstreamActor {
			return adactor.NewUpstreamActor(source, cfg.Upstream.Timeout(), logger)
		}, mqttProvider, logger)
	})
	pid, err := as.Root.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	require.NoError(t, err)
	t.Cleanup(func() { as.Root.Stop(pid) })
	return pid
}

func TestMasterActor(t *testing.T) {

	as := newTestSystem(t)
	pid := spawnMaster(t, as, true)

	health := request[domain.ActorHealthResponse](t, as, pid, domain.ActorHealthRequest{})
	assert.True(t, health.Healthy)
	assert.Equal(t, domain.ACTOR_ID_MASTER, health.Id)

	catalog := request[domain.GetCatalogResponse](t, as, pid, domain.GetCatalogRequest{})
	assert.Len(t, catalog.Devices, 3)

	desc := request[domain.GetDescriptorResponse](t, as, pid, domain.GetDescriptorRequest{Ref: iodd("1")})
	require.False(t, desc.HasResponseError())
	assert.Equal(t, "TempSense 200", desc.Descriptor.ProductName)
}

func TestMasterActorRoutesSessions(t *testing.T) {

	require := require.New(t)

	as := newTestSystem(t)
	pid := spawnMaster(t, as, false)

	a := request[domain.CreateSessionResponse](t, as, pid, domain.CreateSessionRequest{})
	require.NotEmpty(a.SessionID)
	b := request[domain.CreateSessionResponse](t, as, pid, domain.CreateSessionRequest{})
	require.NotEqual(a.SessionID, b.SessionID)

	sessionA := domain.SessionRequestMixIn{SessionID: a.SessionID}
	sessionB := domain.SessionRequestMixIn{SessionID: b.SessionID}

	sel := request[domain.SelectionResponse](t, as, pid, domain.AddDeviceRequest{SessionRequestMixIn: sessionA, Ref: iodd("1")})
	require.False(sel.HasResponseError())

	// sessions do not share selections
	sel = request[domain.SelectionResponse](t, as, pid, domain.GetSelectionRequest{SessionRequestMixIn: sessionB})
	require.Empty(sel.Devices)

	cmp := request[domain.GetComparisonResponse](t, as, pid, domain.GetComparisonRequest{SessionRequestMixIn: sessionA})
	require.Equal(domain.SESSION_READY, cmp.State)
	require.Equal([]domain.DeviceRef{iodd("1")}, cmp.Matrix.Devices)

	unknown := request[domain.ErrorResponse](t, as, pid, domain.GetSelectionRequest{
		SessionRequestMixIn: domain.SessionRequestMixIn{SessionID: "missing"},
	})
	require.ErrorIs(unknown.GetResponseError(), domain.ErrSessionNotFound)
}

func TestMasterActorCatalogRefreshCommand(t *testing.T) {

	as := newTestSystem(t)
	pid := spawnMaster(t, as, true)

	// initial load done
	request[domain.GetCatalogResponse](t, as, pid, domain.GetCatalogRequest{})

	events := make(chan domain.CatalogRefreshEvent, 4)
	sub := as.EventStream.Subscribe(func(evt any) {
		if e, ok := evt.(domain.CatalogRefreshEvent); ok {
			events <- e
		}
	})
	defer as.EventStream.Unsubscribe(sub)

	// commands enter through the mqtt child, which hands them to the master
	mqttPID := actor.NewPID(pid.Address, pid.Id+"/"+domain.ACTOR_ID_MQTT)
	as.Root.Send(mqttPID, adactor.ParsedCommand{
		Command: &mqtt.ParsedMQTTCommand{
			Command: mqtt.MQTT_COMMAND_CATALOG_REFRESH,
			Param:   "eds",
		},
	})

	select {
	case e := <-events:
		assert.Equal(t, domain.FORMAT_EDS, e.Format)
		assert.Equal(t, 1, e.Count)
	case <-time.After(2 * time.Second):
		t.Fatal("catalog not refreshed")
	}
}

type recordingSupervisor struct {
	restarted []*actor.PID
	stopped   []*actor.PID
}

func (s *recordingSupervisor) Children() []*actor.PID                { return nil }
func (s *recordingSupervisor) EscalateFailure(interface{}, interface{}) {}
func (s *recordingSupervisor) RestartChildren(pids ...*actor.PID) {
	s.restarted = append(s.restarted, pids...)
}
func (s *recordingSupervisor) StopChildren(pids ...*actor.PID) {
	s.stopped = append(s.stopped, pids...)
}
func (s *recordingSupervisor) ResumeChildren(pids ...*actor.PID) {}

func TestMasterActorStopsFailedSessions(t *testing.T) {

	require := require.New(t)

	as := newTestSystem(t)
	cfg := util.LoadTestConfig()
	master := NewMasterActor(cfg, nil, nil, zap.NewNop())
	master.upstreamActor = actor.NewPID(as.Address(), "master/"+domain.ACTOR_ID_UPSTREAM)
	master.catalogActor = actor.NewPID(as.Address(), "master/"+domain.ACTOR_ID_CATALOG)

	session := actor.NewPID(as.Address(), "master/"+SESSION_ACTOR_PREFIX+"a")
	sup := &recordingSupervisor{}
	master.HandleFailure(as, sup, session, actor.NewRestartStatistics(), "boom", nil)
	require.Equal([]*actor.PID{session}, sup.stopped)
	require.Empty(sup.restarted)

	sup = &recordingSupervisor{}
	master.HandleFailure(as, sup, master.catalogActor, actor.NewRestartStatistics(), "boom", nil)
	require.Equal([]*actor.PID{master.catalogActor}, sup.restarted)
	require.Empty(sup.stopped)
}

func TestMasterActorForgetsStoppedSessions(t *testing.T) {

	as := newTestSystem(t)
	pid := spawnMaster(t, as, false)

	created := request[domain.CreateSessionResponse](t, as, pid, domain.CreateSessionRequest{})
	require.NoError(t, created.GetResponseError())

	// a stopped session, whatever the cause, answers as unknown
	sessionPID := actor.NewPID(pid.Address, pid.Id+"/"+SESSION_ACTOR_PREFIX+created.SessionID)
	require.NoError(t, as.Root.StopFuture(sessionPID).Wait())

	require.Eventually(t, func() bool {
		res, err := as.Root.RequestFuture(pid, domain.GetSelectionRequest{
			SessionRequestMixIn: domain.SessionRequestMixIn{SessionID: created.SessionID},
		}, time.Second).Result()
		if err != nil {
			return false
		}
		resp, ok := res.(domain.ErrorResponse)
		return ok && errors.Is(resp.GetResponseError(), domain.ErrSessionNotFound)
	}, 2*time.Second, 50*time.Millisecond)
}
