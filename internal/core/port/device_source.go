package port

import (
	"context"

	"github.com/berfenger/descview/internal/core/domain"
)

type CatalogClient interface {
	ListDevices(ctx context.Context, format domain.Format) ([]domain.DeviceSummary, error)
}

type DetailFetcher interface {
	FetchDescriptor(ctx context.Context, ref domain.DeviceRef) (*domain.DeviceDescriptor, error)
}

type DeviceSource interface {
	CatalogClient
	DetailFetcher
}

type UnitFormatter interface {
	Format(value any, unitCode string, precision int) string
	Symbol(unitCode string) string
}

type LabelLookup interface {
	Label(code string) string
}
