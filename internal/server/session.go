package server

import (
	"net/http"
	"strconv"

	"github.com/berfenger/descview/internal/core/domain"

	"github.com/labstack/echo/v4"
)

type selectionResponse struct {
	Session  string             `json:"session"`
	State    string             `json:"state"`
	Snapshot uint64             `json:"snapshot"`
	Devices  []domain.DeviceRef `json:"devices"`
}

type addDeviceRequest struct {
	ID     string `json:"id"`
	Format string `json:"format"`
}

func sessionOf(c echo.Context) domain.SessionRequestMixIn {
	return domain.SessionRequestMixIn{SessionID: c.Param("session")}
}

func (s *Server) respondSelection(c echo.Context, status int, resp domain.SelectionResponse) error {
	devices := resp.Devices
	if devices == nil {
		devices = []domain.DeviceRef{}
	}
	return c.JSON(status, selectionResponse{
		Session:  c.Param("session"),
		State:    string(resp.State),
		Snapshot: uint64(resp.Snapshot),
		Devices:  devices,
	})
}

func (s *Server) CreateSessionHandler(c echo.Context) error {
	resp, err := ask[domain.CreateSessionResponse](s, domain.CreateSessionRequest{})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"session": resp.SessionID})
}

func (s *Server) SelectionHandler(c echo.Context) error {
	resp, err := ask[domain.SelectionResponse](s, domain.GetSelectionRequest{SessionRequestMixIn: sessionOf(c)})
	if err != nil {
		return httpError(err)
	}
	return s.respondSelection(c, http.StatusOK, resp)
}

func (s *Server) AddDeviceHandler(c echo.Context) error {
	var req addDeviceRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.ID == "" {
		return badRequest(errMissingID)
	}
	format, err := domain.ParseFormat(req.Format)
	if err != nil {
		return httpError(err)
	}
	resp, err := ask[domain.SelectionResponse](s, domain.AddDeviceRequest{
		SessionRequestMixIn: sessionOf(c),
		Ref:                 domain.DeviceRef{ID: req.ID, Format: format},
	})
	if err != nil {
		return httpError(err)
	}
	return s.respondSelection(c, http.StatusOK, resp)
}

func (s *Server) RemoveDeviceHandler(c echo.Context) error {
	format, err := domain.ParseFormat(c.Param("format"))
	if err != nil {
		return httpError(err)
	}
	resp, err := ask[domain.SelectionResponse](s, domain.RemoveDeviceRequest{
		SessionRequestMixIn: sessionOf(c),
		Ref:                 domain.DeviceRef{ID: c.Param("id"), Format: format},
	})
	if err != nil {
		return httpError(err)
	}
	return s.respondSelection(c, http.StatusOK, resp)
}

func (s *Server) ClearSelectionHandler(c echo.Context) error {
	resp, err := ask[domain.SelectionResponse](s, domain.ClearSelectionRequest{SessionRequestMixIn: sessionOf(c)})
	if err != nil {
		return httpError(err)
	}
	return s.respondSelection(c, http.StatusOK, resp)
}

func (s *Server) RefreshSelectionHandler(c echo.Context) error {
	resp, err := ask[domain.SelectionResponse](s, domain.RefreshSelectionRequest{SessionRequestMixIn: sessionOf(c)})
	if err != nil {
		return httpError(err)
	}
	return s.respondSelection(c, http.StatusAccepted, resp)
}

func (s *Server) CandidatesHandler(c echo.Context) error {
	resp, err := ask[domain.GetCandidatesResponse](s, domain.GetCandidatesRequest{
		SessionRequestMixIn: sessionOf(c),
		Query:               c.QueryParam("q"),
	})
	if err != nil {
		return httpError(err)
	}
	devices := resp.Devices
	if devices == nil {
		devices = []domain.DeviceSummary{}
	}
	return c.JSON(http.StatusOK, map[string]any{"devices": devices})
}

func (s *Server) ComparisonHandler(c echo.Context) error {
	differencesOnly := false
	if raw := c.QueryParam("differences_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(err)
		}
		differencesOnly = v
	}
	resp, err := ask[domain.GetComparisonResponse](s, domain.GetComparisonRequest{SessionRequestMixIn: sessionOf(c)})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s.renderComparison(resp, differencesOnly))
}

func (s *Server) SpecsHandler(c echo.Context) error {
	resp, err := ask[domain.GetSpecsResponse](s, domain.GetSpecsRequest{SessionRequestMixIn: sessionOf(c)})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, renderSpecs(resp))
}
