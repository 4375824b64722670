package ticket

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/descview/internal/core/domain"
)

type Repository interface {
	Create(ctx context.Context, t *Ticket) error
	Get(ctx context.Context, id string) (*Ticket, error)
	List(ctx context.Context, filter ListFilter) ([]Ticket, error)
	// UpdateStatus moves a ticket from status from to status to. It fails
	// with ErrInvalidTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
	AddComment(ctx context.Context, c *Comment) error
}

// fixed width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const ticketColumns = `id, title, description, priority, status, reporter,
	device_id, device_format, created_at, updated_at`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, t *Ticket) error {
	query := `INSERT INTO tickets (` + ticketColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var deviceID, deviceFormat sql.NullString
	if t.Device != nil {
		deviceID = sql.NullString{String: t.Device.ID, Valid: true}
		deviceFormat = sql.NullString{String: string(t.Device.Format), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		string(t.Priority),
		string(t.Status),
		nullableString(t.Reporter),
		deviceID,
		deviceFormat,
		t.CreatedAt.UTC().Format(timeLayout),
		t.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting ticket: %w", err)
	}
	return nil
}

// Get returns the ticket with its comments, oldest first.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("querying ticket: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ticket_id, author, body, created_at FROM ticket_comments WHERE ticket_id = ? ORDER BY created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c         Comment
			author    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.TicketID, &author, &c.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		c.Author = author.String
		if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing comment time: %w", err)
		}
		t.Comments = append(t.Comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	return t, nil
}

// List returns matching tickets, newest first, without comments.
func (r *SQLiteRepository) List(ctx context.Context, filter ListFilter) ([]Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE 1 = 1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.DeviceID != "" {
		query += ` AND device_id = ?`
		args = append(args, filter.DeviceID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tickets: %w", err)
	}
	defer rows.Close()

	tickets := []Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tickets: %w", err)
	}
	return tickets, nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tickets SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), at.UTC().Format(timeLayout), id, string(from))
	if err != nil {
		return fmt.Errorf("updating ticket: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return r.missedUpdate(ctx, id, from)
	}
	return nil
}

// missedUpdate tells a missing ticket apart from one whose status moved on.
func (r *SQLiteRepository) missedUpdate(ctx context.Context, id string, from Status) error {
	var current string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM tickets WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("checking ticket status: %w", err)
	}
	return fmt.Errorf("%w: status is %s, not %s", ErrInvalidTransition, current, from)
}

// AddComment stores c and bumps the ticket's updated_at in one transaction.
func (r *SQLiteRepository) AddComment(ctx context.Context, c *Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	createdAt := c.CreatedAt.UTC().Format(timeLayout)
	result, err := tx.ExecContext(ctx, `UPDATE tickets SET updated_at = ? WHERE id = ?`, createdAt, c.TicketID)
	if err != nil {
		return fmt.Errorf("updating ticket: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	} else if n == 0 {
		return ErrTicketNotFound
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO ticket_comments (id, ticket_id, author, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TicketID, nullableString(c.Author), c.Body, createdAt)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing comment: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTicket(row scanner) (*Ticket, error) {
	var (
		t                      Ticket
		priority, status       string
		reporter               sql.NullString
		deviceID, deviceFormat sql.NullString
		createdAt, updatedAt   string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &priority, &status, &reporter,
		&deviceID, &deviceFormat, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.Priority = Priority(priority)
	t.Status = Status(status)
	t.Reporter = reporter.String
	if deviceID.Valid {
		t.Device = &domain.DeviceRef{ID: deviceID.String, Format: domain.Format(deviceFormat.String)}
	}
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
