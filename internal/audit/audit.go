// Package audit persists a durable trail of order status transitions.
// The upstream backend keeps only the current status; this table is
// the gateway's record of who moved which order, when.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nees-commerce/admin-gateway/internal/service"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type StatusEvent struct {
	ID         uuid.UUID
	OrderID    string
	Invoice    pgtype.Text
	FromStatus string
	ToStatus   string
	TrackingID pgtype.Text
	Courier    pgtype.Text
	ActorID    pgtype.Text
	ActorName  pgtype.Text
	CreatedAt  time.Time
}

const createStatusEvent = `
INSERT INTO order_status_events (
	id, order_id, invoice, from_status, to_status, tracking_id, courier, actor_id, actor_name
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, order_id, invoice, from_status, to_status, tracking_id, courier, actor_id, actor_name, created_at
`

type CreateStatusEventParams struct {
	OrderID    string
	Invoice    pgtype.Text
	FromStatus string
	ToStatus   string
	TrackingID pgtype.Text
	Courier    pgtype.Text
	ActorID    pgtype.Text
	ActorName  pgtype.Text
}

func (q *Queries) CreateStatusEvent(ctx context.Context, arg CreateStatusEventParams) (StatusEvent, error) {
	row := q.db.QueryRow(ctx, createStatusEvent,
		uuid.New(),
		arg.OrderID,
		arg.Invoice,
		arg.FromStatus,
		arg.ToStatus,
		arg.TrackingID,
		arg.Courier,
		arg.ActorID,
		arg.ActorName,
	)
	var ev StatusEvent
	err := row.Scan(
		&ev.ID,
		&ev.OrderID,
		&ev.Invoice,
		&ev.FromStatus,
		&ev.ToStatus,
		&ev.TrackingID,
		&ev.Courier,
		&ev.ActorID,
		&ev.ActorName,
		&ev.CreatedAt,
	)
	return ev, err
}

const listStatusEventsByOrder = `
SELECT id, order_id, invoice, from_status, to_status, tracking_id, courier, actor_id, actor_name, created_at
FROM order_status_events
WHERE order_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListStatusEventsByOrder(ctx context.Context, orderID string) ([]StatusEvent, error) {
	rows, err := q.db.Query(ctx, listStatusEventsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StatusEvent
	for rows.Next() {
		var ev StatusEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.OrderID,
			&ev.Invoice,
			&ev.FromStatus,
			&ev.ToStatus,
			&ev.TrackingID,
			&ev.Courier,
			&ev.ActorID,
			&ev.ActorName,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Recorder adapts Queries to the workflow's audit interface.
type Recorder struct {
	queries *Queries
}

func NewRecorder(db DBTX) *Recorder {
	return &Recorder{queries: New(db)}
}

func (r *Recorder) RecordStatusChange(ctx context.Context, change service.StatusChange) error {
	_, err := r.queries.CreateStatusEvent(ctx, CreateStatusEventParams{
		OrderID:    change.OrderID,
		Invoice:    optText(change.Invoice),
		FromStatus: string(change.From),
		ToStatus:   string(change.To),
		TrackingID: optText(change.TrackingID),
		Courier:    optText(change.Courier),
		ActorID:    optText(change.ActorID),
		ActorName:  optText(change.ActorName),
	})
	return err
}

// History returns the recorded transitions for one order, newest
// first.
func (r *Recorder) History(ctx context.Context, orderID string) ([]StatusEvent, error) {
	return r.queries.ListStatusEventsByOrder(ctx, orderID)
}

func optText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
