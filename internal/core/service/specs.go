package service

import (
	"slices"
	"strconv"

	"github.com/berfenger/descview/internal/core/domain"
)

type specsField struct {
	field   string
	label   string
	resolve func(ref domain.DeviceRef, d *domain.DeviceDescriptor) string
}

// descriptor-level fields are a closed set, addressed by identity
var specsFields = []specsField{
	{"type", "Type", func(ref domain.DeviceRef, _ *domain.DeviceDescriptor) string {
		return ref.Format.Label()
	}},
	{"vendor", "Vendor / Manufacturer", func(_ domain.DeviceRef, d *domain.DeviceDescriptor) string {
		if d == nil {
			return domain.NOT_AVAILABLE
		}
		return firstAvailable(d.Manufacturer, d.VendorID)
	}},
	{"product_name", "Product Name", func(_ domain.DeviceRef, d *domain.DeviceDescriptor) string {
		if d == nil {
			return domain.NOT_AVAILABLE
		}
		return firstAvailable(d.ProductName)
	}},
	{"product_code", "ID / Product Code", func(ref domain.DeviceRef, d *domain.DeviceDescriptor) string {
		if d == nil {
			return firstAvailable(ref.ID)
		}
		return firstAvailable(d.ProductCode, ref.ID)
	}},
	{"version", "Version", func(_ domain.DeviceRef, d *domain.DeviceDescriptor) string {
		if d == nil {
			return domain.NOT_AVAILABLE
		}
		return firstAvailable(d.Version.Label())
	}},
	{"parameter_count", "Parameters", func(_ domain.DeviceRef, d *domain.DeviceDescriptor) string {
		if d == nil {
			return domain.NOT_AVAILABLE
		}
		return strconv.Itoa(len(d.Parameters))
	}},
	{"description", "Description", func(_ domain.DeviceRef, d *domain.DeviceDescriptor) string {
		if d == nil {
			return domain.NOT_AVAILABLE
		}
		return firstAvailable(d.Description)
	}},
}

// BuildSpecsMatrix compares the fixed descriptor-level fields of the
// selected devices.
func BuildSpecsMatrix(refs []domain.DeviceRef, descriptors []*domain.DeviceDescriptor) domain.SpecsMatrix {
	matrix := domain.SpecsMatrix{
		Devices: slices.Clone(refs),
		Rows:    make([]domain.SpecsRow, 0, len(specsFields)),
	}
	for _, f := range specsFields {
		row := domain.SpecsRow{
			Field:  f.field,
			Label:  f.label,
			Values: make([]string, len(refs)),
		}
		for i, ref := range refs {
			var d *domain.DeviceDescriptor
			if i < len(descriptors) {
				d = descriptors[i]
			}
			row.Values[i] = f.resolve(ref, d)
		}
		row.Differs = specsDiffer(row.Values)
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix
}

func firstAvailable(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return domain.NOT_AVAILABLE
}

func specsDiffer(values []string) bool {
	first := ""
	for _, v := range values {
		if v == domain.NOT_AVAILABLE {
			continue
		}
		if first == "" {
			first = v
			continue
		}
		if v != first {
			return true
		}
	}
	return false
}
