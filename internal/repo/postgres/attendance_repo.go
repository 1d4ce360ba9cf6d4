// Package postgres backs the optional relational attendance API. The core
// stores write through the kv boundary; this repo exists for deployments
// that route records into a shared attendance table instead.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualityveda/attendance-hub/internal/domain"
)

type AttendanceRepository interface {
	Insert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error)
	ListAll(ctx context.Context) ([]domain.AttendanceRecord, error)
}

type attendanceRepository struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

func (r *attendanceRepository) Insert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	const q = `
		INSERT INTO attendance (name, email, lab, training, date, time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING name, email, lab, training, date, time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.AttendanceRecord
	err := r.pool.QueryRow(ctx, q,
		record.Name, record.Email, record.Lab, record.Training, record.Date, record.Time,
	).Scan(&out.Name, &out.Email, &out.Lab, &out.Training, &out.Date, &out.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to insert attendance row: %w", err)
	}
	return &out, nil
}

func (r *attendanceRepository) ListAll(ctx context.Context) ([]domain.AttendanceRecord, error) {
	const q = `
		SELECT name, email, lab, training, date, time
		FROM attendance
		ORDER BY date DESC, time DESC`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance rows: %w", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var rec domain.AttendanceRecord
		if err := rows.Scan(&rec.Name, &rec.Email, &rec.Lab, &rec.Training, &rec.Date, &rec.Time); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
