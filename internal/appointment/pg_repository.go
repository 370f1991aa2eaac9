package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const appointmentColumns = `id, subject_id, practitioner_id, scheduled_at, type, status, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.SubjectID,
		&a.PractitionerID,
		&a.ScheduledAt,
		&a.Type,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// mapWriteError turns a hit on appointments_live_slot_key into a slot conflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlotConflict
	}
	return err
}

// Interface methods

func (r *PgRepository) Save(ctx context.Context, a *Appointment) (*Appointment, error) {
	if a.ID == uuid.Nil {
		row := r.pool.QueryRow(ctx, `
			INSERT INTO appointments (id, subject_id, practitioner_id, scheduled_at, type, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			RETURNING `+appointmentColumns,
			uuid.New(), a.SubjectID, a.PractitionerID, a.ScheduledAt, a.Type, a.Status)

		saved, err := scanAppointment(row)
		if err != nil {
			return nil, mapWriteError(err)
		}
		return saved, nil
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET subject_id = $2,
		    practitioner_id = $3,
		    scheduled_at = $4,
		    type = $5,
		    status = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns,
		a.ID, a.SubjectID, a.PractitionerID, a.ScheduledAt, a.Type, a.Status)

	saved, err := scanAppointment(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return saved, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) FindByPractitionerAndDate(ctx context.Context, practitionerID uuid.UUID, dayStart, dayEnd time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE practitioner_id = $1
		  AND status <> 'cancelled'
		  AND scheduled_at >= $2
		  AND scheduled_at < $3
		ORDER BY scheduled_at
	`, practitionerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("query practitioner day: %w", err)
	}
	return collectAppointments(rows)
}

func (r *PgRepository) List(ctx context.Context, f Filter) ([]Appointment, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.PractitionerID != nil {
		add("practitioner_id = $%d", *f.PractitionerID)
	}
	if f.SubjectID != nil {
		add("subject_id = $%d", *f.SubjectID)
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.Type != nil {
		add("type = $%d", *f.Type)
	}
	if f.From != nil {
		add("scheduled_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("scheduled_at <= $%d", *f.To)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY scheduled_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return collectAppointments(rows)
}
