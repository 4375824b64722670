package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ioddCatalogJSON = `[
  {"id": 1001, "product_name": "TempSense 200", "manufacturer": "Acme Sensors"},
  {"id": "1002", "product_name": "Pressure PX", "vendor_name": "Temperon GmbH"}
]`

const ioddDeviceJSON = `{
  "id": 1001,
  "product_name": "TempSense 200",
  "manufacturer": "Acme Sensors",
  "device_id": "0x0A0B",
  "vendor_id": 310,
  "iodd_version": "V1.1",
  "description": "Temperature sensor with IO-Link",
  "parameters": [
    {"name": "Max Speed", "data_type": "UIntegerT", "access_rights": "rw", "default_value": 10, "min_value": 0, "max_value": 100, "unit_code": 1083},
    {"name": "Application Tag", "data_type": "StringT", "access_rights": "rw", "default_value": "***"}
  ]
}`

const edsDeviceJSON = `{
  "id": 7,
  "product_name": "Drive D7",
  "vendor_name": "Drives Inc",
  "product_code": 55,
  "vendor_code": 1,
  "major_revision": 2,
  "minor_revision": 1,
  "parameters": [
    {"param_name": "Accel Time", "data_type": "UINT", "default_value": 5, "units": "s"},
    {"param_name": "Limits", "data_type": "STRUCT", "default_value": {"low": 1, "high": 9}}
  ]
}`

func newCatalogServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/iodd", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ioddCatalogJSON))
	})
	mux.HandleFunc("/api/iodd/1001", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ioddDeviceJSON))
	})
	mux.HandleFunc("/api/eds/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(edsDeviceJSON))
	})
	mux.HandleFunc("/api/eds", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "catalog offline", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSourceCatalog(t *testing.T) {

	require := require.New(t)

	srv := newCatalogServer(t)
	src := NewHTTPSource(srv.URL+"/", time.Second, zap.NewNop())

	devices, err := src.ListDevices(context.Background(), domain.FORMAT_IODD)
	require.NoError(err)
	require.Len(devices, 2)
	require.Equal("1001", devices[0].ID)
	require.Equal("1002", devices[1].ID)

	_, err = src.ListDevices(context.Background(), domain.FORMAT_EDS)
	require.ErrorIs(err, ErrUpstreamStatus)
	require.Contains(err.Error(), "catalog offline")
}

func TestHTTPSourceNotFound(t *testing.T) {

	srv := newCatalogServer(t)
	src := NewHTTPSource(srv.URL, time.Second, zap.NewNop())

	_, err := src.FetchDescriptor(context.Background(), domain.DeviceRef{ID: "9", Format: domain.FORMAT_IODD})
	assert.ErrorIs(t, err, domain.ErrDeviceNotFound)
}

func TestHTTPAndFixtureCollapseIdentically(t *testing.T) {

	require := require.New(t)

	srv := newCatalogServer(t)
	httpSrc := NewHTTPSource(srv.URL, time.Second, zap.NewNop())
	fixtureSrc, err := LoadFixtureFile("testdata/devices.yaml")
	require.NoError(err)

	for _, ref := range []domain.DeviceRef{
		{ID: "1001", Format: domain.FORMAT_IODD},
		{ID: "7", Format: domain.FORMAT_EDS},
	} {
		fromHTTP, err := httpSrc.FetchDescriptor(context.Background(), ref)
		require.NoError(err)
		fromFixture, err := fixtureSrc.FetchDescriptor(context.Background(), ref)
		require.NoError(err)
		require.Equal(fromFixture, fromHTTP, ref.String())
	}
}

func TestHTTPSourceHonoursContext(t *testing.T) {

	srv := newCatalogServer(t)
	src := NewHTTPSource(srv.URL, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.FetchDescriptor(ctx, domain.DeviceRef{ID: "1001", Format: domain.FORMAT_IODD})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFlexStringDecodesNumbers(t *testing.T) {

	var s flexString
	require.NoError(t, s.UnmarshalJSON([]byte(`42`)))
	assert.Equal(t, "42", s.String())
	require.NoError(t, s.UnmarshalJSON([]byte(`"abc"`)))
	assert.Equal(t, "abc", s.String())
	assert.Error(t, s.UnmarshalJSON([]byte(`{}`)))
}
