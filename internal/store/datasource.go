package store

import (
	"context"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Tables watched for change notifications: the reservation table and its
// table-assignment join table.
const (
	TableReservations      = "reservations"
	TableReservationTables = "reservation_tables"
)

// WatchedTables lists every table whose changes trigger a full reload.
var WatchedTables = []string{TableReservations, TableReservationTables}

// Scope selects which reservations are loaded: a single YYYY-MM-DD date
// or every reservation.
type Scope string

// ScopeAll loads reservations regardless of date.
const ScopeAll Scope = "all"

// DateScope wraps a YYYY-MM-DD date as a Scope.
func DateScope(date string) Scope { return Scope(date) }

// IsAll reports whether the scope covers all dates.
func (s Scope) IsAll() bool { return s == ScopeAll }

// Change describes one row-level change notification.
type Change struct {
	Table string
	Op    string
	RowID string
}

// Unsubscribe releases a change subscription.  Calling it more than once
// is a no-op.
type Unsubscribe func()

// DataSource is the external source of truth for reservations.
type DataSource interface {
	// FetchReservations returns reservation rows for scope joined with
	// customer and table-assignment data.
	FetchReservations(ctx context.Context, scope Scope) ([]model.ReservationRecord, error)
	// SubscribeChanges delivers row-level changes on the given tables to fn
	// until the returned Unsubscribe is called or ctx is done.
	SubscribeChanges(ctx context.Context, tables []string, fn func(Change)) (Unsubscribe, error)
	// UpdateReservationStatus writes a new status for a reservation id.
	UpdateReservationStatus(ctx context.Context, id, status string) error
}
