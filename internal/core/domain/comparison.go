package domain

const NOT_AVAILABLE = "N/A"

type SessionState string

const (
	SESSION_IDLE     SessionState = "idle"
	SESSION_FETCHING SessionState = "fetching"
	SESSION_READY    SessionState = "ready"
)

// Snapshot numbers successive selection states of one session.
type Snapshot uint64

// ComparisonRow is one parameter aligned across the selected devices.
// Values follow selection order; a nil entry means the device has no
// matching parameter.
type ComparisonRow struct {
	CanonicalKey string             `json:"canonical_key"`
	DisplayName  string             `json:"display_name"`
	Values       []*ParameterRecord `json:"values"`
	Differs      bool               `json:"differs"`
}

type ComparisonMatrix struct {
	Devices []DeviceRef     `json:"devices"`
	Rows    []ComparisonRow `json:"rows"`
}

type SpecsRow struct {
	Field   string   `json:"field"`
	Label   string   `json:"label"`
	Values  []string `json:"values"`
	Differs bool     `json:"differs"`
}

type SpecsMatrix struct {
	Devices []DeviceRef `json:"devices"`
	Rows    []SpecsRow  `json:"rows"`
}

// FetchResult is the settled outcome of one descriptor fetch.
type FetchResult struct {
	Ref        DeviceRef
	Descriptor *DeviceDescriptor
	Err        error
}

// FetchPlan is a batch of descriptor fetches issued for one snapshot.
type FetchPlan struct {
	Snapshot Snapshot
	Refs     []DeviceRef
}
