package ticket

import (
	"fmt"
	"slices"
	"time"

	"github.com/berfenger/descview/internal/core/domain"
)

const MAX_TITLE_LENGTH = 200

type Status string

const (
	STATUS_OPEN        Status = "open"
	STATUS_IN_PROGRESS Status = "in_progress"
	STATUS_RESOLVED    Status = "resolved"
	STATUS_CLOSED      Status = "closed"
)

var transitions = map[Status][]Status{
	STATUS_OPEN:        {STATUS_IN_PROGRESS, STATUS_RESOLVED, STATUS_CLOSED},
	STATUS_IN_PROGRESS: {STATUS_OPEN, STATUS_RESOLVED, STATUS_CLOSED},
	STATUS_RESOLVED:    {STATUS_CLOSED, STATUS_OPEN},
	STATUS_CLOSED:      {STATUS_OPEN},
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTicket, s)
	}
	return status, nil
}

// CanTransition reports whether a ticket in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

type Priority string

const (
	PRIORITY_LOW    Priority = "low"
	PRIORITY_NORMAL Priority = "normal"
	PRIORITY_HIGH   Priority = "high"
)

func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "":
		return PRIORITY_NORMAL, nil
	case PRIORITY_LOW, PRIORITY_NORMAL, PRIORITY_HIGH:
		return Priority(s), nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidTicket, s)
}

type Ticket struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    Priority          `json:"priority"`
	Status      Status            `json:"status"`
	Reporter    string            `json:"reporter,omitempty"`
	Device      *domain.DeviceRef `json:"device,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Comments    []Comment         `json:"comments,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Author    string    `json:"author,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTicket holds the user supplied fields of a ticket.
type NewTicket struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Reporter    string            `json:"reporter"`
	Device      *domain.DeviceRef `json:"device"`
}

type NewComment struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// ListFilter narrows List. Empty fields match everything.
type ListFilter struct {
	Status   Status
	DeviceID string
}
