package server

import (
	"errors"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/berfenger/descview/internal/core/service"
)

var errMissingID = errors.New("device id is required")

type renderedCell struct {
	Present      bool   `json:"present"`
	Display      string `json:"display"`
	DataType     string `json:"data_type,omitempty"`
	AccessRights string `json:"access_rights,omitempty"`
	Min          string `json:"min,omitempty"`
	Max          string `json:"max,omitempty"`
	Raw          string `json:"raw,omitempty"`
}

type renderedRow struct {
	CanonicalKey string         `json:"canonical_key"`
	DisplayName  string         `json:"display_name"`
	Differs      bool           `json:"differs"`
	Cells        []renderedCell `json:"cells"`
}

type renderedFailure struct {
	Device domain.DeviceRef `json:"device"`
	Error  string           `json:"error"`
}

type comparisonView struct {
	State    string             `json:"state"`
	Snapshot uint64             `json:"snapshot"`
	Devices  []domain.DeviceRef `json:"devices"`
	Rows     []renderedRow      `json:"rows"`
	Errors   []renderedFailure  `json:"errors"`
}

type specsView struct {
	State    string             `json:"state"`
	Snapshot uint64             `json:"snapshot"`
	Devices  []domain.DeviceRef `json:"devices"`
	Rows     []domain.SpecsRow  `json:"rows"`
}

func (s *Server) renderCell(p *domain.ParameterRecord) renderedCell {
	if p == nil {
		return renderedCell{}
	}
	return renderedCell{
		Present:      true,
		Display:      service.DisplayValue(p, s.formatter, s.precision),
		DataType:     s.dataTypes.Label(p.DataType),
		AccessRights: s.accessRights.Label(p.AccessRights),
		Min:          service.RawText(p.MinValue),
		Max:          service.RawText(p.MaxValue),
		Raw:          service.RawText(p.DefaultValue),
	}
}

// renderComparison turns the matrix into display cells, keeping only rows
// that differ when differencesOnly is set.
func (s *Server) renderComparison(resp domain.GetComparisonResponse, differencesOnly bool) comparisonView {
	view := comparisonView{
		State:    string(resp.State),
		Snapshot: uint64(resp.Snapshot),
		Devices:  resp.Matrix.Devices,
		Rows:     []renderedRow{},
		Errors:   []renderedFailure{},
	}
	if view.Devices == nil {
		view.Devices = []domain.DeviceRef{}
	}
	for _, row := range resp.Matrix.Rows {
		if differencesOnly && !row.Differs {
			continue
		}
		cells := make([]renderedCell, len(row.Values))
		for i, p := range row.Values {
			cells[i] = s.renderCell(p)
		}
		view.Rows = append(view.Rows, renderedRow{
			CanonicalKey: row.CanonicalKey,
			DisplayName:  row.DisplayName,
			Differs:      row.Differs,
			Cells:        cells,
		})
	}
	for _, f := range resp.Failures {
		msg := f.Error()
		if f.Err != nil {
			msg = f.Err.Error()
		}
		view.Errors = append(view.Errors, renderedFailure{
			Device: f.Ref,
			Error:  msg,
		})
	}
	return view
}

func renderSpecs(resp domain.GetSpecsResponse) specsView {
	view := specsView{
		State:    string(resp.State),
		Snapshot: uint64(resp.Snapshot),
		Devices:  resp.Matrix.Devices,
		Rows:     resp.Matrix.Rows,
	}
	if view.Devices == nil {
		view.Devices = []domain.DeviceRef{}
	}
	if view.Rows == nil {
		view.Rows = []domain.SpecsRow{}
	}
	return view
}
