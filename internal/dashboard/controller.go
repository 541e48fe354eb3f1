// Package dashboard drives the admin dashboard: which date is selected,
// when data is reloaded and what the presentation layer gets to render.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/metrics"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/store"
)

// RecentLimit is the number of reservations listed on the dashboard.
const RecentLimit = 5

// TableLister supplies the restaurant's tables for the occupancy rate.
type TableLister interface {
	ListTables(ctx context.Context) ([]model.TableResource, error)
}

// Stats is the dashboard's statistics block.
type Stats struct {
	TotalReservations     int                    `json:"total_reservations"`
	ConfirmedReservations int                    `json:"confirmed_reservations"`
	CancelledReservations int                    `json:"cancelled_reservations"`
	ActiveReservations    int                    `json:"active_reservations"`
	TotalGuests           int                    `json:"total_guests"`
	ActiveTables          int                    `json:"active_tables"`
	OccupancyRate         int                    `json:"occupancy_rate"`
	Shifts                []metrics.ShiftMetrics `json:"shifts"`
}

// Snapshot is an immutable view of the dashboard state.
type Snapshot struct {
	Date               string                    `json:"date"`
	Stats              Stats                     `json:"stats"`
	RecentReservations []model.ReservationRecord `json:"recent_reservations"`
	IsLoading          bool                      `json:"is_loading"`
}

// Controller owns the selected date and exposes snapshots.  It is safe
// for concurrent use; the most recently initiated SetScopeDate always
// determines the final state regardless of completion order.
type Controller struct {
	store  *store.Store
	tables TableLister
	shifts []metrics.Shift
	log    *zap.Logger

	mu           sync.Mutex
	date         string
	gen          uint64 // bumped by every SetScopeDate
	doneGen      uint64 // last generation whose load finished
	failed       bool
	activeTables int
	listeners    map[int]func(Snapshot)
	nextListener int
	unsubscribe  store.Unsubscribe
}

// NewController returns a controller showing date.  No data is loaded
// until SetScopeDate or Start is called.
func NewController(st *store.Store, tables TableLister, shifts []metrics.Shift, date string, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if shifts == nil {
		shifts = metrics.DefaultShifts()
	}
	return &Controller{
		store:     st,
		tables:    tables,
		shifts:    shifts,
		log:       log,
		date:      date,
		listeners: make(map[int]func(Snapshot)),
	}
}

// Start subscribes to reservation changes and loads the initial date.
// Close releases the subscription.
func (c *Controller) Start(ctx context.Context) error {
	unsub, err := c.store.Subscribe(ctx, c.handleStoreChange)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.unsubscribe = unsub
	date := c.date
	c.mu.Unlock()
	return c.SetScopeDate(ctx, date)
}

// Close releases the change subscription and drops every listener.
func (c *Controller) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.listeners = make(map[int]func(Snapshot))
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// SetScopeDate selects date and loads it.  A load that completes after a
// newer SetScopeDate for another date is discarded.  Fetch failures are
// not returned: the dashboard switches to its empty state instead.
func (c *Controller) SetScopeDate(ctx context.Context, date string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}

	c.mu.Lock()
	c.date = date
	c.gen++
	gen := c.gen
	c.failed = false
	c.mu.Unlock()
	c.notify()

	c.load(ctx, date, gen)
	return nil
}

// AdvanceDate moves the selected date one calendar day back (-1) or
// forward (+1) and loads it.
func (c *Controller) AdvanceDate(ctx context.Context, direction int) error {
	if direction != -1 && direction != 1 {
		return fmt.Errorf("invalid direction %d: want -1 or 1", direction)
	}
	next, err := AddDays(c.Date(), direction)
	if err != nil {
		return err
	}
	return c.SetScopeDate(ctx, next)
}

// Date returns the selected date.
func (c *Controller) Date() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// UpdateStatus changes a reservation's status through the store and
// notifies listeners on success.
func (c *Controller) UpdateStatus(ctx context.Context, id, status string) bool {
	if !c.store.UpdateStatus(ctx, id, status) {
		return false
	}
	c.notify()
	return true
}

func (c *Controller) load(ctx context.Context, date string, gen uint64) {
	tables, terr := c.tables.ListTables(ctx)
	_, err := c.store.Load(ctx, store.DateScope(date))

	c.mu.Lock()
	if c.date != date {
		c.mu.Unlock()
		c.log.Debug("discarding dashboard load for previous date", zap.String("date", date))
		return
	}
	if gen > c.doneGen {
		c.doneGen = gen
	}
	switch {
	case errors.Is(err, store.ErrStaleScope):
		// A newer load for another scope owns the store; leave state alone.
	case err != nil || terr != nil:
		c.failed = true
		c.log.Warn("dashboard load failed",
			zap.String("date", date),
			zap.NamedError("reservations_error", err),
			zap.NamedError("tables_error", terr))
	default:
		c.failed = false
		c.activeTables = metrics.CountActiveTables(tables)
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) handleStoreChange() {
	scope, ok := c.store.Scope()
	c.mu.Lock()
	if ok && scope == store.DateScope(c.date) {
		c.failed = false
	}
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns the current dashboard state.  While the selected date
// has no data, or its last load failed, the stats are zero and the list
// is empty.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	date := c.date
	failed := c.failed
	loading := c.doneGen < c.gen
	activeTables := c.activeTables
	c.mu.Unlock()

	snap := Snapshot{
		Date:               date,
		Stats:              emptyStats(),
		RecentReservations: []model.ReservationRecord{},
		IsLoading:          loading,
	}
	scope, recs, ok := c.store.Snapshot()
	if failed || !ok || scope != store.DateScope(date) {
		return snap
	}

	m := metrics.Compute(recs)
	snap.Stats = Stats{
		TotalReservations:     m.Total,
		ConfirmedReservations: m.Confirmed,
		CancelledReservations: m.Cancelled,
		ActiveReservations:    m.Active,
		TotalGuests:           m.TotalGuests,
		ActiveTables:          activeTables,
		OccupancyRate:         metrics.OccupancyRate(m.Active, activeTables),
		Shifts:                metrics.ComputeShifts(recs, c.shifts),
	}
	snap.RecentReservations = Recent(recs, RecentLimit)
	return snap
}

// OnChange registers fn to receive a snapshot after every state change.
// The returned function removes the listener.
func (c *Controller) OnChange(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	fns := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	if len(fns) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// Recent returns up to limit records ordered by date then time, newest
// first.  Ties fall back to creation time (newest first) and then id.
func Recent(recs []model.ReservationRecord, limit int) []model.ReservationRecord {
	sorted := model.CloneRecords(recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func emptyStats() Stats {
	return Stats{Shifts: []metrics.ShiftMetrics{}}
}
