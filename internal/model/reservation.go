package model

import "time"

// Reservation status values.  The set is closed on the write path (see
// ValidStatus) but records read back from the database may still carry
// a status outside of it; aggregation code treats those as "other".
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusArrived   = "arrived"
	StatusCompleted = "completed"
)

// DefaultDurationMinutes is used when a reservation row has no duration.
const DefaultDurationMinutes = 90

// ReservationRecord is a reservation as seen by the admin dashboard: the
// reservation row joined with its customer and its table assignments.
//
// Fields:
//  ID               – opaque identifier (reservations.id).
//  Date             – local calendar date, YYYY-MM-DD, no timezone.
//  Time             – local time of day, HH:MM.
//  Guests           – number of covers, always > 0.
//  Status           – one of the Status* constants (or an unknown string).
//  CustomerID       – reference to customers.id.
//  CustomerName     – denormalized customers.name.
//  Email, Phone     – denormalized customer contact fields.
//  DurationMinutes  – seating duration; DefaultDurationMinutes when unset.
//  SpecialRequests  – free text entered by the guest.
//  TableAssignments – ordered tables assigned to the reservation, may be empty.
//  CreatedAt        – creation timestamp (immutable).
type ReservationRecord struct {
	ID               string            `json:"id"`
	Date             string            `json:"date"`
	Time             string            `json:"time"`
	Guests           int               `json:"guests"`
	Status           string            `json:"status"`
	CustomerID       string            `json:"customer_id,omitempty"`
	CustomerName     string            `json:"customer_name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	DurationMinutes  int               `json:"duration_minutes"`
	SpecialRequests  string            `json:"special_requests,omitempty"`
	TableAssignments []TableAssignment `json:"table_assignments"`
	CreatedAt        time.Time         `json:"created_at"`
}

// TableAssignment links a reservation to one table (reservation_tables row).
type TableAssignment struct {
	TableID   string `json:"table_id"`
	TableName string `json:"table_name"`
}

// Clone returns a deep copy so that callers cannot mutate shared slices.
func (r ReservationRecord) Clone() ReservationRecord {
	out := r
	if r.TableAssignments != nil {
		out.TableAssignments = make([]TableAssignment, len(r.TableAssignments))
		copy(out.TableAssignments, r.TableAssignments)
	}
	return out
}

// CloneRecords deep-copies a slice of records.  A nil input yields an
// empty, non-nil slice so JSON encodes it as [].
func CloneRecords(in []ReservationRecord) []ReservationRecord {
	out := make([]ReservationRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// ValidStatus reports whether s is one of the known reservation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusArrived, StatusCompleted:
		return true
	}
	return false
}

// IsActiveStatus reports whether a reservation with status s occupies a
// table: confirmed and arrived reservations count toward covers and
// occupancy.
func IsActiveStatus(s string) bool {
	return s == StatusConfirmed || s == StatusArrived
}
