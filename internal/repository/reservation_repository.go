package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ReservationRepo reads reservations joined with their customer and table
// assignments, and writes status changes.  Dates and times are formatted
// by MySQL so no timezone conversion ever touches them.
type ReservationRepo struct {
	db              *sql.DB
	defaultDuration int
}

// NewReservationRepo returns a ReservationRepo bound to db.  Reservations
// without a stored duration get defaultDuration minutes.
func NewReservationRepo(db *sql.DB, defaultDuration int) *ReservationRepo {
	if defaultDuration < 0 {
		defaultDuration = model.DefaultDurationMinutes
	}
	return &ReservationRepo{db: db, defaultDuration: defaultDuration}
}

// One row per (reservation, assigned table).  Reservations without any
// assignment come back once with NULL table columns.
const reservationSelect = `SELECT r.id,
       DATE_FORMAT(r.reservation_date, '%Y-%m-%d'),
       TIME_FORMAT(r.reservation_time, '%H:%i'),
       r.guests, r.status, r.customer_id,
       c.name, c.email, c.phone,
       r.duration_minutes, r.special_requests, r.created_at,
       rt.table_id, t.name
FROM reservations r
LEFT JOIN customers c ON c.id = r.customer_id
LEFT JOIN reservation_tables rt ON rt.reservation_id = r.id
LEFT JOIN tables t ON t.id = rt.table_id`

// ListByDate returns every reservation on a YYYY-MM-DD date ordered by
// time.  An empty slice is returned when none exist.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]model.ReservationRecord, error) {
	q := reservationSelect + `
WHERE r.reservation_date = ?
ORDER BY r.reservation_time, r.id, rt.position`
	return r.query(ctx, q, date)
}

// ListAll returns every reservation ordered by date and time.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.ReservationRecord, error) {
	q := reservationSelect + `
ORDER BY r.reservation_date, r.reservation_time, r.id, rt.position`
	return r.query(ctx, q)
}

// ListByEmail returns the reservations of the customer with the given
// email, newest first.
func (r *ReservationRepo) ListByEmail(ctx context.Context, email string) ([]model.ReservationRecord, error) {
	q := reservationSelect + `
WHERE LOWER(c.email) = ?
ORDER BY r.reservation_date DESC, r.reservation_time DESC, r.id, rt.position`
	return r.query(ctx, q, strings.ToLower(strings.TrimSpace(email)))
}

// UpdateStatus sets a reservation's status.  ErrInvalidStatus is returned
// for unknown statuses and ErrNotFound when the id does not exist.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if !model.ValidStatus(status) {
		return ErrInvalidStatus
	}
	const q = `UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return fmt.Errorf("update reservation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.ReservationRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var acc reservationAccumulator
	for rows.Next() {
		var row reservationRow
		if err := rows.Scan(
			&row.ID, &row.Date, &row.Time,
			&row.Guests, &row.Status, &row.CustomerID,
			&row.CustomerName, &row.Email, &row.Phone,
			&row.Duration, &row.SpecialRequests, &row.CreatedAt,
			&row.TableID, &row.TableName,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		acc.add(row, r.defaultDuration)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return acc.records(), nil
}

// reservationRow is one scanned row of reservationSelect.
type reservationRow struct {
	ID              string
	Date            string
	Time            string
	Guests          int
	Status          string
	CustomerID      sql.NullString
	CustomerName    sql.NullString
	Email           sql.NullString
	Phone           sql.NullString
	Duration        sql.NullInt64
	SpecialRequests sql.NullString
	CreatedAt       time.Time
	TableID         sql.NullString
	TableName       sql.NullString
}

// reservationAccumulator folds joined rows into records, keeping the
// order in which reservations and their assignments first appear.
type reservationAccumulator struct {
	list  []model.ReservationRecord
	index map[string]int
}

func (a *reservationAccumulator) add(row reservationRow, defaultDuration int) {
	if a.index == nil {
		a.index = make(map[string]int)
	}
	i, ok := a.index[row.ID]
	if !ok {
		duration := defaultDuration
		if row.Duration.Valid && row.Duration.Int64 >= 0 {
			duration = int(row.Duration.Int64)
		}
		a.list = append(a.list, model.ReservationRecord{
			ID:               row.ID,
			Date:             row.Date,
			Time:             row.Time,
			Guests:           row.Guests,
			Status:           row.Status,
			CustomerID:       row.CustomerID.String,
			CustomerName:     row.CustomerName.String,
			Email:            row.Email.String,
			Phone:            row.Phone.String,
			DurationMinutes:  duration,
			SpecialRequests:  row.SpecialRequests.String,
			TableAssignments: []model.TableAssignment{},
			CreatedAt:        row.CreatedAt,
		})
		i = len(a.list) - 1
		a.index[row.ID] = i
	}
	if row.TableID.Valid {
		a.list[i].TableAssignments = append(a.list[i].TableAssignments, model.TableAssignment{
			TableID:   row.TableID.String,
			TableName: row.TableName.String,
		})
	}
}

func (a *reservationAccumulator) records() []model.ReservationRecord {
	if a.list == nil {
		return []model.ReservationRecord{}
	}
	return a.list
}
