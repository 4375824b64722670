package upstream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/berfenger/descview/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// flexString accepts a JSON/YAML string or number. Catalog services are not
// consistent about numeric ids and unit codes.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(num.String())
	return nil
}

func (s *flexString) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar", value.Line)
	}
	if value.Tag == "!!null" {
		return nil
	}
	*s = flexString(value.Value)
	return nil
}

func (s *flexString) String() string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(string(*s))
}

type ioddParameter struct {
	Name         string      `json:"name" yaml:"name"`
	DataType     string      `json:"data_type" yaml:"data_type"`
	AccessRights string      `json:"access_rights" yaml:"access_rights"`
	DefaultValue any         `json:"default_value" yaml:"default_value"`
	MinValue     any         `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue     any         `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	UnitCode     *flexString `json:"unit_code,omitempty" yaml:"unit_code,omitempty"`
}

type ioddRecord struct {
	ID           flexString      `json:"id" yaml:"id"`
	ProductName  string          `json:"product_name" yaml:"product_name"`
	Manufacturer *string         `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	VendorName   *string         `json:"vendor_name,omitempty" yaml:"vendor_name,omitempty"`
	DeviceID     *flexString     `json:"device_id,omitempty" yaml:"device_id,omitempty"`
	VendorID     *flexString     `json:"vendor_id,omitempty" yaml:"vendor_id,omitempty"`
	IODDVersion  *string         `json:"iodd_version,omitempty" yaml:"iodd_version,omitempty"`
	Description  *string         `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters   []ioddParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type edsParameter struct {
	ParamName    string  `json:"param_name" yaml:"param_name"`
	DataType     string  `json:"data_type" yaml:"data_type"`
	AccessRights *string `json:"access_rights,omitempty" yaml:"access_rights,omitempty"`
	DefaultValue any     `json:"default_value" yaml:"default_value"`
	MinValue     any     `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue     any     `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	Units        *string `json:"units,omitempty" yaml:"units,omitempty"`
}

type edsRecord struct {
	ID            flexString     `json:"id" yaml:"id"`
	ProductName   string         `json:"product_name" yaml:"product_name"`
	VendorName    *string        `json:"vendor_name,omitempty" yaml:"vendor_name,omitempty"`
	Manufacturer  *string        `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	ProductCode   *flexString    `json:"product_code,omitempty" yaml:"product_code,omitempty"`
	VendorCode    *flexString    `json:"vendor_code,omitempty" yaml:"vendor_code,omitempty"`
	MajorRevision *int           `json:"major_revision,omitempty" yaml:"major_revision,omitempty"`
	MinorRevision *int           `json:"minor_revision,omitempty" yaml:"minor_revision,omitempty"`
	Description   *string        `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters    []edsParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

func (r *ioddRecord) summary() domain.DeviceSummary {
	return domain.DeviceSummary{
		ID:           r.ID.String(),
		Format:       domain.FORMAT_IODD,
		ProductName:  r.ProductName,
		Manufacturer: deref(r.Manufacturer),
		VendorName:   deref(r.VendorName),
	}
}

func (r *ioddRecord) descriptor() *domain.DeviceDescriptor {
	d := &domain.DeviceDescriptor{
		Ref:          domain.DeviceRef{ID: r.ID.String(), Format: domain.FORMAT_IODD},
		ProductName:  r.ProductName,
		Manufacturer: firstNonEmpty(deref(r.Manufacturer), deref(r.VendorName)),
		ProductCode:  r.DeviceID.String(),
		VendorID:     r.VendorID.String(),
		Version:      domain.VersionInfo{DescriptorVersion: deref(r.IODDVersion)},
		Description:  deref(r.Description),
		Parameters:   make([]domain.ParameterRecord, 0, len(r.Parameters)),
	}
	for _, p := range r.Parameters {
		d.Parameters = append(d.Parameters, domain.ParameterRecord{
			Name:         p.Name,
			DataType:     p.DataType,
			AccessRights: p.AccessRights,
			DefaultValue: normalizeValue(p.DefaultValue),
			MinValue:     normalizeValue(p.MinValue),
			MaxValue:     normalizeValue(p.MaxValue),
			Units:        p.UnitCode.String(),
		})
	}
	return d
}

func (r *edsRecord) summary() domain.DeviceSummary {
	return domain.DeviceSummary{
		ID:           r.ID.String(),
		Format:       domain.FORMAT_EDS,
		ProductName:  r.ProductName,
		Manufacturer: deref(r.Manufacturer),
		VendorName:   deref(r.VendorName),
	}
}

func (r *edsRecord) descriptor() *domain.DeviceDescriptor {
	d := &domain.DeviceDescriptor{
		Ref:          domain.DeviceRef{ID: r.ID.String(), Format: domain.FORMAT_EDS},
		ProductName:  r.ProductName,
		Manufacturer: firstNonEmpty(deref(r.Manufacturer), deref(r.VendorName)),
		ProductCode:  r.ProductCode.String(),
		VendorID:     r.VendorCode.String(),
		Version:      domain.VersionInfo{Major: r.MajorRevision, Minor: r.MinorRevision},
		Description:  deref(r.Description),
		Parameters:   make([]domain.ParameterRecord, 0, len(r.Parameters)),
	}
	for _, p := range r.Parameters {
		d.Parameters = append(d.Parameters, domain.ParameterRecord{
			Name:         p.ParamName,
			DataType:     p.DataType,
			AccessRights: deref(p.AccessRights),
			DefaultValue: normalizeValue(p.DefaultValue),
			MinValue:     normalizeValue(p.MinValue),
			MaxValue:     normalizeValue(p.MaxValue),
			Units:        deref(p.Units),
		})
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeValue brings decoded JSON and YAML values to one shape: numbers
// become float64 and maps become map[string]any.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case json.Number:
		if f, err := strconv.ParseFloat(val.String(), 64); err == nil {
			return f
		}
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	}
	return v
}
