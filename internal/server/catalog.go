package server

import (
	"net/http"
	"time"

	"github.com/berfenger/descview/internal/core/domain"

	"github.com/labstack/echo/v4"
)

type catalogResponse struct {
	Devices  []domain.DeviceSummary      `json:"devices"`
	Errors   map[domain.Format]string    `json:"errors"`
	LoadedAt map[domain.Format]time.Time `json:"loaded_at"`
}

// queryFormat reads the optional format query parameter.
func queryFormat(c echo.Context) (domain.Format, error) {
	raw := c.QueryParam("format")
	if raw == "" {
		return "", nil
	}
	return domain.ParseFormat(raw)
}

func (s *Server) CatalogHandler(c echo.Context) error {
	format, err := queryFormat(c)
	if err != nil {
		return httpError(err)
	}
	resp, err := ask[domain.GetCatalogResponse](s, domain.GetCatalogRequest{Format: format})
	if err != nil {
		return httpError(err)
	}
	devices := resp.Devices
	if devices == nil {
		devices = []domain.DeviceSummary{}
	}
	return c.JSON(http.StatusOK, catalogResponse{
		Devices:  devices,
		Errors:   resp.Failures,
		LoadedAt: resp.LoadedAt,
	})
}

func (s *Server) RefreshCatalogHandler(c echo.Context) error {
	format, err := queryFormat(c)
	if err != nil {
		return httpError(err)
	}
	if _, err := ask[domain.RefreshCatalogResponse](s, domain.RefreshCatalogRequest{Format: format}); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "refreshing"})
}

func (s *Server) DeviceHandler(c echo.Context) error {
	format, err := domain.ParseFormat(c.Param("format"))
	if err != nil {
		return httpError(err)
	}
	ref := domain.DeviceRef{ID: c.Param("id"), Format: format}
	resp, err := ask[domain.GetDescriptorResponse](s, domain.GetDescriptorRequest{Ref: ref})
	if err != nil {
		return httpError(err)
	}
	if resp.Descriptor == nil {
		return httpError(domain.ErrDeviceNotFound)
	}
	return c.JSON(http.StatusOK, resp.Descriptor)
}
