package ticket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/berfenger/descview/internal/core/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives an event for every ticket change.
type Notifier interface {
	Notify(event domain.TicketEvent)
}

type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewService builds the ticket workflow. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		logger:   logger.With(zap.String("component", "tickets")),
	}
}

func (s *Service) Create(ctx context.Context, req NewTicket) (*Ticket, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTicket)
	}
	if len([]rune(title)) > MAX_TITLE_LENGTH {
		return nil, fmt.Errorf("%w: title longer than %d characters", ErrInvalidTicket, MAX_TITLE_LENGTH)
	}
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	var device *domain.DeviceRef
	if req.Device != nil {
		format, err := domain.ParseFormat(string(req.Device.Format))
		if err != nil || strings.TrimSpace(req.Device.ID) == "" {
			return nil, fmt.Errorf("%w: device needs an id and a known format", ErrInvalidTicket)
		}
		device = &domain.DeviceRef{ID: strings.TrimSpace(req.Device.ID), Format: format}
	}

	now := s.now()
	t := &Ticket{
		ID:          newID("tkt-"),
		Title:       title,
		Description: req.Description,
		Priority:    priority,
		Status:      STATUS_OPEN,
		Reporter:    strings.TrimSpace(req.Reporter),
		Device:      device,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("ticket created", zap.String("ticket", t.ID), zap.String("priority", string(t.Priority)))
	s.notify(domain.TICKET_EVENT_CREATED, t)
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Ticket, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Ticket, error) {
	if filter.Status != "" {
		if _, err := ParseStatus(string(filter.Status)); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, filter)
}

// Transition moves a ticket to status next. Moving to the current status
// is rejected like any other illegal move.
func (s *Service) Transition(ctx context.Context, id string, next Status) (*Ticket, error) {
	if _, err := ParseStatus(string(next)); err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}
	now := s.now()
	if err := s.repo.UpdateStatus(ctx, id, t.Status, next, now); err != nil {
		return nil, err
	}
	s.logger.Info("ticket status changed", zap.String("ticket", id),
		zap.String("from", string(t.Status)), zap.String("to", string(next)))
	t.Status = next
	t.UpdatedAt = now
	s.notify(domain.TICKET_EVENT_STATUS_CHANGED, t)
	return t, nil
}

func (s *Service) Comment(ctx context.Context, id string, req NewComment) (*Comment, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment body is required", ErrInvalidTicket)
	}
	c := &Comment{
		ID:        newID("cmt-"),
		TicketID:  id,
		Author:    strings.TrimSpace(req.Author),
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("ticket commented", zap.String("ticket", id), zap.String("comment", c.ID))
	s.notify(domain.TICKET_EVENT_COMMENTED, t)
	return c, nil
}

func (s *Service) notify(eventType domain.TicketEventType, t *Ticket) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.TicketEvent{
		Type:     eventType,
		TicketID: t.ID,
		Status:   string(t.Status),
		Title:    t.Title,
		Device:   t.Device,
		At:       t.UpdatedAt,
	})
}

func newID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
