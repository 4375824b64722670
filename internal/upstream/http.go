package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/berfenger/descview/internal/core/domain"
	"go.uber.org/zap"
)

// HTTPSource reads catalogs and descriptors from the device catalog service.
//
//	GET {base}/api/{format}       catalog
//	GET {base}/api/{format}/{id}  descriptor
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPSource(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (s *HTTPSource) ListDevices(ctx context.Context, format domain.Format) ([]domain.DeviceSummary, error) {
	endpoint := fmt.Sprintf("%s/api/%s", s.baseURL, format)
	switch format {
	case domain.FORMAT_IODD:
		var records []ioddRecord
		if err := s.get(ctx, endpoint, &records); err != nil {
			return nil, err
		}
		devices := make([]domain.DeviceSummary, 0, len(records))
		for i := range records {
			devices = append(devices, records[i].summary())
		}
		return devices, nil
	case domain.FORMAT_EDS:
		var records []edsRecord
		if err := s.get(ctx, endpoint, &records); err != nil {
			return nil, err
		}
		devices := make([]domain.DeviceSummary, 0, len(records))
		for i := range records {
			devices = append(devices, records[i].summary())
		}
		return devices, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, format)
}

func (s *HTTPSource) FetchDescriptor(ctx context.Context, ref domain.DeviceRef) (*domain.DeviceDescriptor, error) {
	endpoint := fmt.Sprintf("%s/api/%s/%s", s.baseURL, ref.Format, url.PathEscape(ref.ID))
	switch ref.Format {
	case domain.FORMAT_IODD:
		var record ioddRecord
		if err := s.get(ctx, endpoint, &record); err != nil {
			return nil, err
		}
		return withRef(record.descriptor(), ref), nil
	case domain.FORMAT_EDS:
		var record edsRecord
		if err := s.get(ctx, endpoint, &record); err != nil {
			return nil, err
		}
		return withRef(record.descriptor(), ref), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFormat, ref.Format)
}

// withRef keeps the requested identity when the payload omits its id.
func withRef(d *domain.DeviceDescriptor, ref domain.DeviceRef) *domain.DeviceDescriptor {
	if d.Ref.ID == "" {
		d.Ref = ref
	}
	return d
}

func (s *HTTPSource) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	s.logger.Debug("upstream request", zap.String("url", endpoint), zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrDeviceNotFound, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d from %s: %s", ErrUpstreamStatus, resp.StatusCode, endpoint, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
