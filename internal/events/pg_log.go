package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgLog appends events to the event_logs table.
type PgLog struct {
	pool *pgxpool.Pool
}

func NewPgLog(pool *pgxpool.Pool) *PgLog {
	return &PgLog{pool: pool}
}

func (l *PgLog) Publish(ctx context.Context, ev Event) error {
	var payload []byte
	if ev.Payload != nil {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", ev.Type, err)
		}
		payload = data
	}

	_, err := l.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.Type, ev.AppointmentID, payload, nullableTime(ev))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(ev Event) any {
	if ev.OccurredAt.IsZero() {
		return nil
	}
	return ev.OccurredAt
}
