package service

import (
	"testing"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specsRow(t *testing.T, m domain.SpecsMatrix, field string) domain.SpecsRow {
	t.Helper()
	for _, r := range m.Rows {
		if r.Field == field {
			return r
		}
	}
	require.FailNow(t, "missing specs row", field)
	return domain.SpecsRow{}
}

func intPtr(v int) *int {
	return &v
}

func TestSpecsRowsAndFallbacks(t *testing.T) {

	assert := assert.New(t)

	refs := []domain.DeviceRef{eds("11"), eds("12")}
	m := BuildSpecsMatrix(refs, []*domain.DeviceDescriptor{
		{
			Ref:          refs[0],
			ProductName:  "Drive",
			Manufacturer: "Acme",
			ProductCode:  "D-100",
			Version:      domain.VersionInfo{Major: intPtr(2), Minor: intPtr(1)},
			Parameters:   []domain.ParameterRecord{param("a", 1)},
		},
		{
			Ref:         refs[1],
			ProductName: "Drive",
			VendorID:    "0x0042",
			Version:     domain.VersionInfo{DescriptorVersion: "V1.1"},
		},
	})

	var fields []string
	for _, r := range m.Rows {
		fields = append(fields, r.Field)
	}
	assert.Equal([]string{"type", "vendor", "product_name", "product_code", "version", "parameter_count", "description"}, fields)

	assert.Equal([]string{"EDS", "EDS"}, specsRow(t, m, "type").Values)
	assert.False(specsRow(t, m, "type").Differs)

	vendor := specsRow(t, m, "vendor")
	assert.Equal([]string{"Acme", "0x0042"}, vendor.Values)
	assert.True(vendor.Differs)

	assert.False(specsRow(t, m, "product_name").Differs)
	assert.Equal([]string{"D-100", "12"}, specsRow(t, m, "product_code").Values)
	assert.Equal([]string{"2.1", "V1.1"}, specsRow(t, m, "version").Values)
	assert.Equal([]string{"1", "0"}, specsRow(t, m, "parameter_count").Values)

	desc := specsRow(t, m, "description")
	assert.Equal([]string{domain.NOT_AVAILABLE, domain.NOT_AVAILABLE}, desc.Values)
	assert.False(desc.Differs)
}

func TestSpecsPendingDeviceIsNotAvailable(t *testing.T) {

	assert := assert.New(t)

	refs := []domain.DeviceRef{iodd("1"), iodd("2")}
	m := BuildSpecsMatrix(refs, []*domain.DeviceDescriptor{
		{Ref: refs[0], ProductName: "Sensor", Manufacturer: "Acme"},
		nil,
	})

	assert.Equal([]string{"Sensor", domain.NOT_AVAILABLE}, specsRow(t, m, "product_name").Values)
	assert.False(specsRow(t, m, "product_name").Differs)
	assert.Equal([]string{"1", "2"}, specsRow(t, m, "product_code").Values)
	assert.Equal([]string{"IODD", "IODD"}, specsRow(t, m, "type").Values)
}

func TestSpecsVersionNeedsBothParts(t *testing.T) {

	refs := []domain.DeviceRef{eds("1")}
	m := BuildSpecsMatrix(refs, []*domain.DeviceDescriptor{
		{Ref: refs[0], Version: domain.VersionInfo{Major: intPtr(3)}},
	})
	assert.Equal(t, []string{domain.NOT_AVAILABLE}, specsRow(t, m, "version").Values)
}
