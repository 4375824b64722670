package domain

import "time"

type TicketEventType string

const (
	TICKET_EVENT_CREATED        TicketEventType = "created"
	TICKET_EVENT_STATUS_CHANGED TicketEventType = "status_changed"
	TICKET_EVENT_COMMENTED      TicketEventType = "commented"
)

// TicketEvent is published whenever a support ticket changes.
type TicketEvent struct {
	Type     TicketEventType `json:"type"`
	TicketID string          `json:"ticket_id"`
	Status   string          `json:"status"`
	Title    string          `json:"title,omitempty"`
	Device   *DeviceRef      `json:"device,omitempty"`
	At       time.Time       `json:"at"`
}

// CatalogRefreshEvent is published by the catalog actor after a reload.
type CatalogRefreshEvent struct {
	Format Format    `json:"format"`
	Count  int       `json:"count"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}
