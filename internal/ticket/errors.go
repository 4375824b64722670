package ticket

import "errors"

var (
	ErrTicketNotFound    = errors.New("ticket: not found")
	ErrInvalidTicket     = errors.New("ticket: invalid")
	ErrInvalidTransition = errors.New("ticket: invalid status transition")
)
