package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/berfenger/descview/internal/ticket"
	"github.com/berfenger/descview/internal/upstream"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/labstack/echo/v4"
)

var errUnexpectedResponse = errors.New("unexpected actor response")

// ask sends msg to the master actor and waits for a response of type T.
// Errors carried in the response are returned as errors.
func ask[T domain.ActorResponse](s *Server, msg any) (T, error) {
	var zero T
	res, err := s.rootContext.RequestFuture(s.masterActor, msg, s.requestTimeout).Result()
	if err != nil {
		return zero, err
	}
	resp, ok := res.(domain.ActorResponse)
	if !ok {
		return zero, fmt.Errorf("%w: %T", errUnexpectedResponse, res)
	}
	if resp.HasResponseError() {
		return zero, resp.GetResponseError()
	}
	typed, ok := resp.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T", errUnexpectedResponse, res)
	}
	return typed, nil
}

// httpError maps domain errors to HTTP status codes.
func httpError(err error) *echo.HTTPError {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMaxSelectionExceeded),
		errors.Is(err, domain.ErrDuplicateSelection),
		errors.Is(err, ticket.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTypeMismatch):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrDeviceNotFound),
		errors.Is(err, ticket.ErrTicketNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownFormat),
		errors.Is(err, ticket.ErrInvalidTicket):
		status = http.StatusBadRequest
	case errors.Is(err, upstream.ErrUpstreamStatus),
		errors.Is(err, upstream.ErrNoSource):
		status = http.StatusBadGateway
	case errors.Is(err, actor.ErrTimeout):
		status = http.StatusGatewayTimeout
	}
	return echo.NewHTTPError(status, err.Error())
}

func badRequest(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
