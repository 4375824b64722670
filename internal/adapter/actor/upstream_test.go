package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/berfenger/descview/internal/upstream"
	"github.com/berfenger/descview/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testFixtures = `
iodd:
  - id: 1
    product_name: TempSense 200
    manufacturer: Acme
    parameters:
      - name: Max Speed
        data_type: UIntegerT
        access_rights: rw
        default_value: 10
  - id: 2
    product_name: Pressure PX
    vendor_name: Temperon
    parameters:
      - name: max_speed
        data_type: UIntegerT
        access_rights: rw
        default_value: 20
eds:
  - id: 7
    product_name: Drive D7
`

type slowSource struct {
	delay time.Duration
}

func (s slowSource) ListDevices(ctx context.Context, format domain.Format) ([]domain.DeviceSummary, error) {
	select {
	case <-time.After(s.delay):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s slowSource) FetchDescriptor(ctx context.Context, ref domain.DeviceRef) (*domain.DeviceDescriptor, error) {
	select {
	case <-time.After(s.delay):
		return &domain.DeviceDescriptor{Ref: ref}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func spawnUpstream(t *testing.T, newActor func() *UpstreamActor) (*actor.RootContext, *actor.PID) {
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor { return newActor() }))
	t.Cleanup(func() {
		as.Root.Stop(pid)
		as.Shutdown()
	})
	return as.Root, pid
}

func fixtureUpstream(t *testing.T) (*actor.RootContext, *actor.PID) {
	src, err := upstream.NewFixtureSource([]byte(testFixtures))
	require.NoError(t, err)
	return spawnUpstream(t, func() *UpstreamActor {
		return NewUpstreamActor(src, time.Second, zap.NewNop())
	})
}

func TestUpstreamListCatalog(t *testing.T) {

	require := require.New(t)

	context, pid := fixtureUpstream(t)

	result, err := context.RequestFuture(pid, domain.ListCatalogRequest{Format: domain.FORMAT_IODD}, 2*time.Second).Result()
	require.NoError(err)
	resp, ok := result.(domain.ListCatalogResponse)
	require.True(ok)
	require.False(resp.HasResponseError())
	require.Equal(domain.FORMAT_IODD, resp.Format)
	require.Len(resp.Devices, 2)
}

func TestUpstreamFetchBatchSettlesAll(t *testing.T) {

	require := require.New(t)

	context, pid := fixtureUpstream(t)

	plan := domain.FetchPlan{
		Snapshot: 3,
		Refs: []domain.DeviceRef{
			{ID: "1", Format: domain.FORMAT_IODD},
			{ID: "404", Format: domain.FORMAT_IODD},
			{ID: "2", Format: domain.FORMAT_IODD},
		},
	}
	result, err := context.RequestFuture(pid, domain.FetchDescriptorsRequest{Plan: plan}, 2*time.Second).Result()
	require.NoError(err)
	resp := result.(domain.FetchDescriptorsResponse)

	require.Equal(domain.Snapshot(3), resp.Snapshot)
	require.Len(resp.Results, 3)
	require.Equal(plan.Refs[0], resp.Results[0].Ref)
	require.NoError(resp.Results[0].Err)
	require.Equal("TempSense 200", resp.Results[0].Descriptor.ProductName)
	require.ErrorIs(resp.Results[1].Err, domain.ErrDeviceNotFound)
	require.Nil(resp.Results[1].Descriptor)
	require.NoError(resp.Results[2].Err)
}

func TestUpstreamGetDescriptor(t *testing.T) {

	assert := assert.New(t)

	context, pid := fixtureUpstream(t)

	result, err := context.RequestFuture(pid, domain.GetDescriptorRequest{Ref: domain.DeviceRef{ID: "7", Format: domain.FORMAT_EDS}}, 2*time.Second).Result()
	assert.NoError(err)
	resp := result.(domain.GetDescriptorResponse)
	assert.False(resp.HasResponseError())
	assert.Equal("Drive D7", resp.Descriptor.ProductName)

	result, err = context.RequestFuture(pid, domain.GetDescriptorRequest{Ref: domain.DeviceRef{ID: "8", Format: domain.FORMAT_EDS}}, 2*time.Second).Result()
	assert.NoError(err)
	resp = result.(domain.GetDescriptorResponse)
	assert.True(errors.Is(resp.GetResponseError(), domain.ErrDeviceNotFound))
}

func TestUpstreamFetchTimeout(t *testing.T) {

	require := require.New(t)

	context, pid := spawnUpstream(t, func() *UpstreamActor {
		return NewUpstreamActor(slowSource{delay: 5 * time.Second}, 200*time.Millisecond, zap.NewNop())
	})

	plan := domain.FetchPlan{Snapshot: 1, Refs: []domain.DeviceRef{{ID: "1", Format: domain.FORMAT_IODD}}}
	result, err := context.RequestFuture(pid, domain.FetchDescriptorsRequest{Plan: plan}, 3*time.Second).Result()
	require.NoError(err)
	resp := result.(domain.FetchDescriptorsResponse)
	require.Len(resp.Results, 1)
	require.Error(resp.Results[0].Err)
}

func TestUpstreamHealth(t *testing.T) {

	context, pid := fixtureUpstream(t)

	result, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, time.Second).Result()
	require.NoError(t, err)
	resp := result.(domain.ActorHealthResponse)
	assert.True(t, resp.Healthy)
	assert.Equal(t, domain.ACTOR_ID_UPSTREAM, resp.Id)
}
