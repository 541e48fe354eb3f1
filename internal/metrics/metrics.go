// Package metrics turns a set of reservation records into day- and
// shift-level operational statistics.  Everything in here is pure: no
// I/O, no shared state, and the result never depends on input order.
package metrics

import (
	"math"

	"github.com/iliyamo/table-reservation/internal/model"
)

// Metrics is the day-level aggregate over a reservation collection.
//
// Total counts every record regardless of status.  Active counts records
// that occupy a table (confirmed + arrived) and TotalGuests sums covers
// over the same set.  The per-status breakdown always satisfies
// Total == Pending + Confirmed + Cancelled + Arrived + Completed + Other.
type Metrics struct {
	Total       int `json:"total"`
	Confirmed   int `json:"confirmed"`
	Cancelled   int `json:"cancelled"`
	Active      int `json:"active"`
	TotalGuests int `json:"total_guests"`

	Pending   int `json:"pending"`
	Arrived   int `json:"arrived"`
	Completed int `json:"completed"`
	Other     int `json:"other"`
}

// ShiftMetrics is the aggregate for one shift window.
type ShiftMetrics struct {
	Shift        string `json:"shift"`
	Reservations int    `json:"reservations"`
	Guests       int    `json:"guests"`
	Arrived      int    `json:"arrived"`
	Cancelled    int    `json:"cancelled"`
}

// Compute aggregates records into Metrics.  An empty input yields the
// zero value.
func Compute(records []model.ReservationRecord) Metrics {
	var m Metrics
	for _, r := range records {
		m.Total++
		switch r.Status {
		case model.StatusPending:
			m.Pending++
		case model.StatusConfirmed:
			m.Confirmed++
		case model.StatusCancelled:
			m.Cancelled++
		case model.StatusArrived:
			m.Arrived++
		case model.StatusCompleted:
			m.Completed++
		default:
			m.Other++
		}
		if model.IsActiveStatus(r.Status) {
			m.Active++
			m.TotalGuests += r.Guests
		}
	}
	return m
}

// ComputeShift restricts records to those whose time falls inside the
// shift window and aggregates them.  Reservations and Guests follow the
// active-only rule of Compute; Arrived and Cancelled are plain counts
// inside the window.
func ComputeShift(records []model.ReservationRecord, shift Shift) ShiftMetrics {
	out := ShiftMetrics{Shift: shift.Name}
	for _, r := range records {
		if !shift.Contains(r.Time) {
			continue
		}
		switch r.Status {
		case model.StatusArrived:
			out.Arrived++
		case model.StatusCancelled:
			out.Cancelled++
		}
		if model.IsActiveStatus(r.Status) {
			out.Reservations++
			out.Guests += r.Guests
		}
	}
	return out
}

// ComputeShifts runs ComputeShift for each shift, preserving order.
func ComputeShifts(records []model.ReservationRecord, shifts []Shift) []ShiftMetrics {
	out := make([]ShiftMetrics, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, ComputeShift(records, s))
	}
	return out
}

// OccupancyRate returns round(active / totalTables * 100).  A restaurant
// with no active tables has an occupancy of 0.
func OccupancyRate(active, totalTables int) int {
	if totalTables <= 0 {
		return 0
	}
	return int(math.Round(float64(active) / float64(totalTables) * 100))
}

// CountActiveTables counts tables flagged as active.
func CountActiveTables(tables []model.TableResource) int {
	n := 0
	for _, t := range tables {
		if t.IsActive {
			n++
		}
	}
	return n
}
