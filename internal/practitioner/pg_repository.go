package practitioner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const practitionerColumns = `id, name, sex, national_id, specialty, active, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	var specialty *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Sex,
		&p.NationalID,
		&specialty,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.Specialty = specialty
	return &p, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrDuplicateNationalID
		case foreignKeyViolation:
			return ErrInUse
		}
	}
	return err
}

func (r *PgRepository) Create(ctx context.Context, p *Practitioner) (*Practitioner, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO practitioners (id, name, sex, national_id, specialty, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+practitionerColumns,
		uuid.New(), p.Name, p.Sex, p.NationalID, p.Specialty, p.Active)

	created, err := scanPractitioner(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (r *PgRepository) Update(ctx context.Context, p *Practitioner) (*Practitioner, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE practitioners
		SET name = $2,
		    sex = $3,
		    national_id = $4,
		    specialty = $5,
		    active = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+practitionerColumns,
		p.ID, p.Name, p.Sex, p.NationalID, p.Specialty, p.Active)

	updated, err := scanPractitioner(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+practitionerColumns+`
		FROM practitioners
		WHERE id = $1
	`, id)
	return scanPractitioner(row)
}

func (r *PgRepository) FindByNationalID(ctx context.Context, nationalID string) (*Practitioner, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+practitionerColumns+`
		FROM practitioners
		WHERE national_id = $1
	`, nationalID)
	return scanPractitioner(row)
}

func (r *PgRepository) List(ctx context.Context, f ListFilter) ([]Practitioner, error) {
	var (
		conds []string
		args  []any
	)
	if f.Active != nil {
		args = append(args, *f.Active)
		conds = append(conds, fmt.Sprintf("active = $%d", len(args)))
	}
	if f.Name != "" {
		args = append(args, f.Name)
		conds = append(conds, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if f.Specialty != "" {
		args = append(args, f.Specialty)
		conds = append(conds, fmt.Sprintf("specialty ILIKE '%%' || $%d || '%%'", len(args)))
	}

	query := `SELECT ` + practitionerColumns + ` FROM practitioners`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list practitioners: %w", err)
	}
	defer rows.Close()

	var result []Practitioner
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM practitioners WHERE active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active practitioners: %w", err)
	}
	return n, nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM practitioners WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
