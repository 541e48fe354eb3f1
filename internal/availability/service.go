// Package availability answers "which times are free for this party on
// this date" by calling the get_available_slots stored procedure.
package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest marks input the procedure would reject.
var ErrInvalidRequest = errors.New("invalid availability request")

// Service runs the availability procedure.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service { return &Service{db: db} }

// AvailableSlots returns the free start times on date for guests people,
// formatted HH:MM, in the order the procedure yields them.  The result
// is never nil.
func (s *Service) AvailableSlots(ctx context.Context, date string, guests int) ([]string, error) {
	if date == "" || guests <= 0 {
		return nil, ErrInvalidRequest
	}
	rows, err := s.db.QueryContext(ctx, "CALL get_available_slots(?, ?)", date, guests)
	if err != nil {
		return nil, fmt.Errorf("call get_available_slots: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("slot columns: %w", err)
	}
	if len(cols) == 0 {
		return []string{}, nil
	}
	// Only the first column carries the slot; extra columns are ignored.
	raw := make([]sql.RawBytes, len(cols))
	dest := make([]interface{}, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	slots := []string{}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		if raw[0] == nil {
			continue
		}
		slots = append(slots, NormalizeSlot(string(raw[0])))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}

// NormalizeSlot trims a TIME value such as "18:30:00" to "18:30".
// Values that are not clock times are returned trimmed but unchanged.
func NormalizeSlot(v string) string {
	v = strings.TrimSpace(v)
	if len(v) == len("15:04:05") && v[2] == ':' && v[5] == ':' {
		return v[:5]
	}
	return v
}
