package ticket

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/berfenger/descview/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	events []domain.TicketEvent
}

func (n *recordingNotifier) Notify(event domain.TicketEvent) {
	n.events = append(n.events, event)
}

func newTestService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "tickets", "tickets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	notifier := &recordingNotifier{}
	svc := NewService(NewSQLiteRepository(db), notifier, zap.NewNop())
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, notifier
}

func TestCreateTicket(t *testing.T) {

	require := require.New(t)
	ctx := context.Background()

	svc, notifier := newTestService(t)

	created, err := svc.Create(ctx, NewTicket{
		Title:    "  Wrong default for Max Speed  ",
		Reporter: "ops",
		Device:   &domain.DeviceRef{ID: "1", Format: "IODD"},
	})
	require.NoError(err)
	require.Regexp(`^tkt-[0-9a-f]{8}$`, created.ID)
	require.Equal("Wrong default for Max Speed", created.Title)
	require.Equal(PRIORITY_NORMAL, created.Priority)
	require.Equal(STATUS_OPEN, created.Status)
	require.Equal(&domain.DeviceRef{ID: "1", Format: domain.FORMAT_IODD}, created.Device)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(err)
	require.Equal(created.Title, got.Title)
	require.Equal(created.Device, got.Device)
	require.True(created.CreatedAt.Equal(got.CreatedAt))

	require.Len(notifier.events, 1)
	require.Equal(domain.TICKET_EVENT_CREATED, notifier.events[0].Type)
	require.Equal(created.ID, notifier.events[0].TicketID)
}

func TestCreateTicketValidation(t *testing.T) {

	ctx := context.Background()
	svc, notifier := newTestService(t)

	_, err := svc.Create(ctx, NewTicket{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidTicket)

	long := make([]rune, MAX_TITLE_LENGTH+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.Create(ctx, NewTicket{Title: string(long)})
	assert.ErrorIs(t, err, ErrInvalidTicket)

	_, err = svc.Create(ctx, NewTicket{Title: "t", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidTicket)

	_, err = svc.Create(ctx, NewTicket{Title: "t", Device: &domain.DeviceRef{ID: "1", Format: "xml"}})
	assert.ErrorIs(t, err, ErrInvalidTicket)

	assert.Empty(t, notifier.events)
}

func TestTicketTransitions(t *testing.T) {

	require := require.New(t)
	ctx := context.Background()

	svc, notifier := newTestService(t)

	created, err := svc.Create(ctx, NewTicket{Title: "Unit missing"})
	require.NoError(err)

	moved, err := svc.Transition(ctx, created.ID, STATUS_IN_PROGRESS)
	require.NoError(err)
	require.Equal(STATUS_IN_PROGRESS, moved.Status)

	_, err = svc.Transition(ctx, created.ID, STATUS_RESOLVED)
	require.NoError(err)

	_, err = svc.Transition(ctx, created.ID, STATUS_IN_PROGRESS)
	require.ErrorIs(err, ErrInvalidTransition)

	_, err = svc.Transition(ctx, created.ID, STATUS_CLOSED)
	require.NoError(err)

	_, err = svc.Transition(ctx, created.ID, STATUS_CLOSED)
	require.ErrorIs(err, ErrInvalidTransition)

	_, err = svc.Transition(ctx, created.ID, STATUS_OPEN)
	require.NoError(err)

	_, err = svc.Transition(ctx, created.ID, "archived")
	require.ErrorIs(err, ErrInvalidTicket)

	_, err = svc.Transition(ctx, "tkt-missing", STATUS_CLOSED)
	require.ErrorIs(err, ErrTicketNotFound)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(err)
	require.Equal(STATUS_OPEN, got.Status)
	require.True(got.UpdatedAt.After(got.CreatedAt))

	// created + four accepted moves
	require.Len(notifier.events, 5)
	require.Equal(domain.TICKET_EVENT_STATUS_CHANGED, notifier.events[4].Type)
	require.Equal("open", notifier.events[4].Status)
}

// staleRepository lets another writer close the ticket right after every
// read, so the caller always acts on an outdated status.
type staleRepository struct {
	Repository
	at time.Time
}

func (r *staleRepository) Get(ctx context.Context, id string) (*Ticket, error) {
	t, err := r.Repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Repository.UpdateStatus(ctx, id, t.Status, STATUS_CLOSED, r.at); err != nil {
		return nil, err
	}
	return t, nil
}

func TestTicketTransitionLosesRace(t *testing.T) {

	require := require.New(t)
	ctx := context.Background()

	svc, notifier := newTestService(t)

	created, err := svc.Create(ctx, NewTicket{Title: "Wrong unit"})
	require.NoError(err)

	svc.repo = &staleRepository{Repository: svc.repo, at: created.CreatedAt.Add(time.Second)}

	// open -> resolved passes the check, but the ticket was closed meanwhile
	_, err = svc.Transition(ctx, created.ID, STATUS_RESOLVED)
	require.ErrorIs(err, ErrInvalidTransition)

	repo := svc.repo.(*staleRepository).Repository
	got, err := repo.Get(ctx, created.ID)
	require.NoError(err)
	require.Equal(STATUS_CLOSED, got.Status)

	err = repo.UpdateStatus(ctx, "tkt-missing", STATUS_OPEN, STATUS_CLOSED, time.Now())
	require.ErrorIs(err, ErrTicketNotFound)

	// only the creation was announced
	require.Len(notifier.events, 1)
}

func TestTicketComments(t *testing.T) {

	require := require.New(t)
	ctx := context.Background()

	svc, notifier := newTestService(t)

	created, err := svc.Create(ctx, NewTicket{Title: "EDS revision"})
	require.NoError(err)

	_, err = svc.Comment(ctx, created.ID, NewComment{Author: "ana", Body: "first"})
	require.NoError(err)
	_, err = svc.Comment(ctx, created.ID, NewComment{Body: "second"})
	require.NoError(err)

	_, err = svc.Comment(ctx, created.ID, NewComment{Body: " "})
	require.ErrorIs(err, ErrInvalidTicket)

	_, err = svc.Comment(ctx, "tkt-missing", NewComment{Body: "lost"})
	require.ErrorIs(err, ErrTicketNotFound)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(err)
	require.Len(got.Comments, 2)
	require.Equal("first", got.Comments[0].Body)
	require.Equal("ana", got.Comments[0].Author)
	require.Equal("second", got.Comments[1].Body)

	require.Len(notifier.events, 3)
	require.Equal(domain.TICKET_EVENT_COMMENTED, notifier.events[2].Type)
}

func TestListTickets(t *testing.T) {

	require := require.New(t)
	ctx := context.Background()

	svc, _ := newTestService(t)

	a, err := svc.Create(ctx, NewTicket{Title: "a", Device: &domain.DeviceRef{ID: "1", Format: domain.FORMAT_IODD}})
	require.NoError(err)
	b, err := svc.Create(ctx, NewTicket{Title: "b", Device: &domain.DeviceRef{ID: "7", Format: domain.FORMAT_EDS}})
	require.NoError(err)
	_, err = svc.Transition(ctx, b.ID, STATUS_CLOSED)
	require.NoError(err)

	all, err := svc.List(ctx, ListFilter{})
	require.NoError(err)
	require.Len(all, 2)
	// newest first
	require.Equal(b.ID, all[0].ID)

	open, err := svc.List(ctx, ListFilter{Status: STATUS_OPEN})
	require.NoError(err)
	require.Len(open, 1)
	require.Equal(a.ID, open[0].ID)

	byDevice, err := svc.List(ctx, ListFilter{DeviceID: "7"})
	require.NoError(err)
	require.Len(byDevice, 1)
	require.Equal(b.ID, byDevice[0].ID)

	_, err = svc.List(ctx, ListFilter{Status: "weird"})
	require.ErrorIs(err, ErrInvalidTicket)
}

func TestOpenInMemory(t *testing.T) {

	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLiteRepository(db)
	tickets, err := repo.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Empty(t, tickets)
}
