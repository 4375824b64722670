package upstream

import (
	"context"
	"fmt"
	"os"

	"github.com/berfenger/descview/internal/core/domain"
	"gopkg.in/yaml.v3"
)

type fixtureDocument struct {
	IODD []ioddRecord `yaml:"iodd"`
	EDS  []edsRecord  `yaml:"eds"`
}

// FixtureSource serves catalogs and descriptors from a static YAML document.
// It backs the offline mode and the tests.
type FixtureSource struct {
	catalogs    map[domain.Format][]domain.DeviceSummary
	descriptors map[string]*domain.DeviceDescriptor
}

func LoadFixtureFile(path string) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return NewFixtureSource(data)
}

func NewFixtureSource(data []byte) (*FixtureSource, error) {
	var doc fixtureDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	src := &FixtureSource{
		catalogs:    make(map[domain.Format][]domain.DeviceSummary),
		descriptors: make(map[string]*domain.DeviceDescriptor),
	}
	for i := range doc.IODD {
		src.add(doc.IODD[i].summary(), doc.IODD[i].descriptor())
	}
	for i := range doc.EDS {
		src.add(doc.EDS[i].summary(), doc.EDS[i].descriptor())
	}
	return src, nil
}

func (s *FixtureSource) add(summary domain.DeviceSummary, d *domain.DeviceDescriptor) {
	if summary.ID == "" {
		return
	}
	s.catalogs[summary.Format] = append(s.catalogs[summary.Format], summary)
	s.descriptors[d.Ref.Key()] = d
}

func (s *FixtureSource) ListDevices(ctx context.Context, format domain.Format) ([]domain.DeviceSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	devices := s.catalogs[format]
	out := make([]domain.DeviceSummary, len(devices))
	copy(out, devices)
	return out, nil
}

func (s *FixtureSource) FetchDescriptor(ctx context.Context, ref domain.DeviceRef) (*domain.DeviceDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := s.descriptors[ref.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDeviceNotFound, ref)
	}
	return d, nil
}
