package domain

import (
	"fmt"
	"strings"
)

type Format string

const (
	FORMAT_IODD Format = "iodd"
	FORMAT_EDS  Format = "eds"
)

var Formats = []Format{FORMAT_IODD, FORMAT_EDS}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FORMAT_IODD:
		return FORMAT_IODD, nil
	case FORMAT_EDS:
		return FORMAT_EDS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Label is the short type name shown to users.
func (f Format) Label() string {
	switch f {
	case FORMAT_IODD:
		return "IODD"
	case FORMAT_EDS:
		return "EDS"
	}
	return strings.ToUpper(string(f))
}

// DeviceRef identifies one device of one descriptor format.
type DeviceRef struct {
	ID     string `json:"id"`
	Format Format `json:"format"`
}

func (r DeviceRef) Key() string {
	return string(r.Format) + ":" + r.ID
}

func (r DeviceRef) String() string {
	return r.Key()
}

// DeviceSummary is one catalog entry.
type DeviceSummary struct {
	ID           string `json:"id"`
	Format       Format `json:"format"`
	ProductName  string `json:"product_name"`
	Manufacturer string `json:"manufacturer,omitempty"`
	VendorName   string `json:"vendor_name,omitempty"`
}

func (s DeviceSummary) Ref() DeviceRef {
	return DeviceRef{ID: s.ID, Format: s.Format}
}

type VersionInfo struct {
	DescriptorVersion string `json:"descriptor_version,omitempty"`
	Major             *int   `json:"major,omitempty"`
	Minor             *int   `json:"minor,omitempty"`
}

// Label resolves the version fallback chain: descriptor version, then
// "{major}.{minor}", then "".
func (v VersionInfo) Label() string {
	if v.DescriptorVersion != "" {
		return v.DescriptorVersion
	}
	if v.Major != nil && v.Minor != nil {
		return fmt.Sprintf("%d.%d", *v.Major, *v.Minor)
	}
	return ""
}

// DeviceDescriptor is the normalized descriptor of a device. Values are
// never mutated after a fetch; a new fetch produces a new descriptor.
type DeviceDescriptor struct {
	Ref          DeviceRef         `json:"ref"`
	ProductName  string            `json:"product_name"`
	Manufacturer string            `json:"manufacturer"`
	ProductCode  string            `json:"product_code"`
	VendorID     string            `json:"vendor_id,omitempty"`
	Version      VersionInfo       `json:"version"`
	Description  string            `json:"description"`
	Parameters   []ParameterRecord `json:"parameters"`
}

type ParameterRecord struct {
	Name         string `json:"name"`
	DataType     string `json:"data_type"`
	AccessRights string `json:"access_rights"`
	DefaultValue any    `json:"default_value"`
	MinValue     any    `json:"min_value,omitempty"`
	MaxValue     any    `json:"max_value,omitempty"`
	Units        string `json:"units,omitempty"`
}
