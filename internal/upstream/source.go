package upstream

import (
	"time"

	"github.com/berfenger/descview/internal/core/port"
	"go.uber.org/zap"
)

// NewDeviceSource picks the fixtures file when configured, the catalog
// service otherwise.
func NewDeviceSource(baseURL, fixturesFile string, timeout time.Duration, logger *zap.Logger) (port.DeviceSource, error) {
	if fixturesFile != "" {
		logger.Info("using descriptor fixtures", zap.String("file", fixturesFile))
		src, err := LoadFixtureFile(fixturesFile)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	if baseURL == "" {
		return nil, ErrNoSource
	}
	logger.Info("using descriptor catalog service", zap.String("url", baseURL))
	return NewHTTPSource(baseURL, timeout, logger), nil
}

// ensure interface compliance
var _ port.DeviceSource = (*HTTPSource)(nil)
var _ port.DeviceSource = (*FixtureSource)(nil)
