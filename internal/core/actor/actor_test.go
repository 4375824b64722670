package actor

import (
	"context"
	"testing"
	"time"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/berfenger/descview/internal/core/port"
	"github.com/berfenger/descview/internal/upstream"
	"github.com/berfenger/descview/internal/util/actorutil"

	adactor "github.com/berfenger/descview/internal/adapter/actor"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDevices = `
iodd:
  - id: 1
    product_name: TempSense 200
    manufacturer: Acme
    parameters:
      - name: Max Speed
        data_type: UIntegerT
        access_rights: rw
        default_value: 10
      - name: Vendor Text
        data_type: StringT
        access_rights: ro
        default_value: Acme
  - id: 2
    product_name: Pressure PX
    vendor_name: Temperon
    parameters:
      - name: max_speed
        data_type: UIntegerT
        access_rights: rw
        default_value: 20
      - name: Vendor Text
        data_type: StringT
        access_rights: ro
        default_value: Acme
eds:
  - id: 7
    product_name: Drive D7
    vendor_name: Acme
`

func iodd(id string) domain.DeviceRef {
	return domain.DeviceRef{ID: id, Format: domain.FORMAT_IODD}
}

func eds(id string) domain.DeviceRef {
	return domain.DeviceRef{ID: id, Format: domain.FORMAT_EDS}
}

// delayedSource slows every call of the wrapped source down.
type delayedSource struct {
	port.DeviceSource
	delay time.Duration
}

func (s delayedSource) FetchDescriptor(ctx context.Context, ref domain.DeviceRef) (*domain.DeviceDescriptor, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.DeviceSource.FetchDescriptor(ctx, ref)
}

func fixtureSource(t *testing.T) port.DeviceSource {
	src, err := upstream.NewFixtureSource([]byte(testDevices))
	require.NoError(t, err)
	return src
}

func newTestSystem(t *testing.T) *actor.ActorSystem {
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	t.Cleanup(as.Shutdown)
	return as
}

// spawnBackend starts an upstream and a catalog actor on as.
func spawnBackend(t *testing.T, as *actor.ActorSystem, source port.DeviceSource) (upstreamPID, catalogPID *actor.PID) {
	logger := zap.NewNop()
	upstreamPID = as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewUpstreamActor(source, time.Second, logger)
	}))
	catalogPID = as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewCatalogActor(upstreamPID, time.Second, logger)
	}))
	t.Cleanup(func() {
		as.Root.Stop(catalogPID)
		as.Root.Stop(upstreamPID)
	})
	return upstreamPID, catalogPID
}

func request[T any](t *testing.T, as *actor.ActorSystem, pid *actor.PID, msg any) T {
	t.Helper()
	result, err := as.Root.RequestFuture(pid, msg, 3*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(T)
	require.Truef(t, ok, "unexpected response %T", result)
	return resp
}
