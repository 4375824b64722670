package server

import (
	"net/http"

	"github.com/berfenger/descview/internal/ticket"

	"github.com/labstack/echo/v4"
)

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) CreateTicketHandler(c echo.Context) error {
	var req ticket.NewTicket
	if err := c.Bind(&req); err != nil {
		return err
	}
	t, err := s.tickets.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) ListTicketsHandler(c echo.Context) error {
	tickets, err := s.tickets.List(c.Request().Context(), ticket.ListFilter{
		Status:   ticket.Status(c.QueryParam("status")),
		DeviceID: c.QueryParam("device_id"),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"tickets": tickets})
}

func (s *Server) GetTicketHandler(c echo.Context) error {
	t, err := s.tickets.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) TicketStatusHandler(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	t, err := s.tickets.Transition(c.Request().Context(), c.Param("id"), ticket.Status(req.Status))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) TicketCommentHandler(c echo.Context) error {
	var req ticket.NewComment
	if err := c.Bind(&req); err != nil {
		return err
	}
	comment, err := s.tickets.Comment(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}
