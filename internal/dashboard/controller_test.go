package dashboard

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/store"
	"github.com/iliyamo/table-reservation/internal/store/storetest"
)

type fakeTables struct {
	mu     sync.Mutex
	tables []model.TableResource
	err    error
}

func (f *fakeTables) ListTables(ctx context.Context) ([]model.TableResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.TableResource(nil), f.tables...), nil
}

func eightTables() *fakeTables {
	ft := &fakeTables{}
	for i := 0; i < 8; i++ {
		ft.tables = append(ft.tables, model.TableResource{ID: string(rune('a' + i)), IsActive: true})
	}
	ft.tables = append(ft.tables, model.TableResource{ID: "inactive", IsActive: false})
	return ft
}

func res(id, date, tm, status string, guests int) model.ReservationRecord {
	return model.ReservationRecord{ID: id, Date: date, Time: tm, Status: status, Guests: guests}
}

func newController(t *testing.T, src *storetest.Source, tables TableLister, date string) *Controller {
	t.Helper()
	c := NewController(store.New(src, nil), tables, nil, date, nil)
	t.Cleanup(c.Close)
	return c
}

func TestSetScopeDateStats(t *testing.T) {
	src := storetest.NewSource()
	src.Set("2025-03-14",
		res("1", "2025-03-14", "12:00", model.StatusConfirmed, 2),
		res("2", "2025-03-14", "19:30", model.StatusArrived, 4),
		res("3", "2025-03-14", "20:00", model.StatusCancelled, 6),
		res("4", "2025-03-14", "21:00", model.StatusPending, 3),
	)
	c := newController(t, src, eightTables(), "2025-03-13")

	if err := c.SetScopeDate(context.Background(), "2025-03-14"); err != nil {
		t.Fatalf("SetScopeDate() unexpected error: %v", err)
	}
	snap := c.Snapshot()
	if snap.IsLoading {
		t.Error("IsLoading should be false after load completes")
	}
	want := Stats{
		TotalReservations:     4,
		ConfirmedReservations: 1,
		CancelledReservations: 1,
		ActiveReservations:    2,
		TotalGuests:           6,
		ActiveTables:          8,
		OccupancyRate:         25,
	}
	got := snap.Stats
	got.Shifts = nil
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	if len(snap.Stats.Shifts) != 2 {
		t.Fatalf("Shifts = %+v, want lunch and dinner", snap.Stats.Shifts)
	}
	if snap.Stats.Shifts[1].Reservations != 1 || snap.Stats.Shifts[1].Cancelled != 1 {
		t.Errorf("dinner shift = %+v", snap.Stats.Shifts[1])
	}
	if len(snap.RecentReservations) != 4 || snap.RecentReservations[0].ID != "4" {
		t.Errorf("RecentReservations = %+v, want newest first", snap.RecentReservations)
	}
}

func TestSetScopeDateInvalid(t *testing.T) {
	c := newController(t, storetest.NewSource(), eightTables(), "2025-03-14")
	if err := c.SetScopeDate(context.Background(), "14/03/2025"); err == nil {
		t.Fatal("SetScopeDate() expected error for malformed date")
	}
	if c.Date() != "2025-03-14" {
		t.Errorf("Date() = %q, want unchanged", c.Date())
	}
}

func TestOccupancyWithoutTables(t *testing.T) {
	src := storetest.NewSource()
	src.Set("2025-03-14",
		res("1", "2025-03-14", "12:00", model.StatusConfirmed, 2),
		res("2", "2025-03-14", "12:00", model.StatusConfirmed, 2),
		res("3", "2025-03-14", "12:00", model.StatusArrived, 2),
	)
	c := newController(t, src, &fakeTables{}, "2025-03-14")
	if err := c.SetScopeDate(context.Background(), "2025-03-14"); err != nil {
		t.Fatalf("SetScopeDate() unexpected error: %v", err)
	}
	if got := c.Snapshot().Stats.OccupancyRate; got != 0 {
		t.Errorf("OccupancyRate = %d, want 0", got)
	}
}

func TestAdvanceDate(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		direction int
		want      string
	}{
		{"monthBoundaryForward", "2025-01-31", 1, "2025-02-01"},
		{"monthBoundaryBack", "2025-03-01", -1, "2025-02-28"},
		{"leapDay", "2024-02-28", 1, "2024-02-29"},
		{"yearBoundary", "2024-12-31", 1, "2025-01-01"},
		{"dstSpringForward", "2025-03-30", 1, "2025-03-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(t, storetest.NewSource(), eightTables(), tt.start)
			if err := c.AdvanceDate(context.Background(), tt.direction); err != nil {
				t.Fatalf("AdvanceDate() unexpected error: %v", err)
			}
			if got := c.Date(); got != tt.want {
				t.Errorf("Date() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdvanceDateInvalidDirection(t *testing.T) {
	c := newController(t, storetest.NewSource(), eightTables(), "2025-01-31")
	for _, dir := range []int{0, 2, -7} {
		if err := c.AdvanceDate(context.Background(), dir); err == nil {
			t.Errorf("AdvanceDate(%d) expected error", dir)
		}
	}
}

func TestFetchFailureShowsEmptyState(t *testing.T) {
	t.Run("reservations", func(t *testing.T) {
		src := storetest.NewSource()
		src.Set("2025-03-14", res("1", "2025-03-14", "12:00", model.StatusConfirmed, 2))
		c := newController(t, src, eightTables(), "2025-03-14")
		ctx := context.Background()
		if err := c.SetScopeDate(ctx, "2025-03-14"); err != nil {
			t.Fatalf("SetScopeDate() unexpected error: %v", err)
		}
		if c.Snapshot().Stats.TotalReservations != 1 {
			t.Fatal("expected data before failure")
		}

		src.FailFetch("2025-03-14", true)
		if err := c.SetScopeDate(ctx, "2025-03-14"); err != nil {
			t.Fatalf("SetScopeDate() should not surface fetch errors, got %v", err)
		}
		snap := c.Snapshot()
		if snap.Stats.TotalReservations != 0 || len(snap.RecentReservations) != 0 {
			t.Errorf("Snapshot() after failure = %+v, want empty state", snap)
		}
		if snap.RecentReservations == nil || snap.Stats.Shifts == nil {
			t.Error("empty state should use empty slices, not nil")
		}
	})

	t.Run("tables", func(t *testing.T) {
		src := storetest.NewSource()
		src.Set("2025-03-14", res("1", "2025-03-14", "12:00", model.StatusConfirmed, 2))
		c := newController(t, src, &fakeTables{err: errors.New("db down")}, "2025-03-14")
		if err := c.SetScopeDate(context.Background(), "2025-03-14"); err != nil {
			t.Fatalf("SetScopeDate() unexpected error: %v", err)
		}
		if got := c.Snapshot().Stats.TotalReservations; got != 0 {
			t.Errorf("TotalReservations = %d, want 0", got)
		}
	})
}

func TestStaleDateLoadDiscarded(t *testing.T) {
	src := storetest.NewSource()
	src.Set("2025-03-14",
		res("a1", "2025-03-14", "12:00", model.StatusConfirmed, 2),
		res("a2", "2025-03-14", "13:00", model.StatusConfirmed, 2),
		res("a3", "2025-03-14", "14:00", model.StatusConfirmed, 2),
	)
	src.Set("2025-03-15", res("b1", "2025-03-15", "19:00", model.StatusArrived, 5))
	c := newController(t, src, eightTables(), "2025-03-13")
	ctx := context.Background()

	startedA := src.Hold("2025-03-14")
	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		_ = c.SetScopeDate(ctx, "2025-03-14")
	}()
	<-startedA

	if err := c.SetScopeDate(ctx, "2025-03-15"); err != nil {
		t.Fatalf("SetScopeDate() unexpected error: %v", err)
	}
	src.Release("2025-03-14")
	select {
	case <-doneA:
	case <-time.After(2 * time.Second):
		t.Fatal("load for first date did not finish")
	}

	snap := c.Snapshot()
	if snap.Date != "2025-03-15" {
		t.Errorf("Date = %q, want 2025-03-15", snap.Date)
	}
	if snap.Stats.TotalReservations != 1 || snap.Stats.TotalGuests != 5 {
		t.Errorf("Stats = %+v, want stats of 2025-03-15", snap.Stats)
	}
	if len(snap.RecentReservations) != 1 || snap.RecentReservations[0].ID != "b1" {
		t.Errorf("RecentReservations = %+v, want b1 only", snap.RecentReservations)
	}
	if snap.IsLoading {
		t.Error("IsLoading should be false")
	}
}

func TestIsLoadingWhileInFlight(t *testing.T) {
	src := storetest.NewSource()
	src.Set("2025-03-14", res("1", "2025-03-14", "12:00", model.StatusConfirmed, 2))
	c := newController(t, src, eightTables(), "2025-03-13")

	started := src.Hold("2025-03-14")
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.SetScopeDate(context.Background(), "2025-03-14")
	}()
	<-started
	if !c.Snapshot().IsLoading {
		t.Error("IsLoading should be true while the load is in flight")
	}
	src.Release("2025-03-14")
	<-done
	if c.Snapshot().IsLoading {
		t.Error("IsLoading should be false after the load completes")
	}
}

func TestChangeNotificationRefreshes(t *testing.T) {
	src := storetest.NewSource()
	src.Set("2025-03-14", res("1", "2025-03-14", "12:00", model.StatusConfirmed, 2))
	c := newController(t, src, eightTables(), "2025-03-14")
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	var mu sync.Mutex
	var last Snapshot
	remove := c.OnChange(func(s Snapshot) {
		mu.Lock()
		last = s
		mu.Unlock()
	})
	defer remove()

	src.Set("2025-03-14",
		res("1", "2025-03-14", "12:00", model.StatusConfirmed, 2),
		res("2", "2025-03-14", "20:00", model.StatusConfirmed, 4),
	)
	src.Emit(store.Change{Table: store.TableReservations, Op: "INSERT", RowID: "2"})

	mu.Lock()
	defer mu.Unlock()
	if last.Stats.TotalReservations != 2 || last.Stats.TotalGuests != 6 {
		t.Errorf("listener snapshot = %+v, want refreshed stats", last.Stats)
	}
}

func TestCloseReleasesSubscription(t *testing.T) {
	src := storetest.NewSource()
	c := NewController(store.New(src, nil), eightTables(), nil, "2025-03-14", nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	if src.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", src.Subscribers())
	}
	c.Close()
	if src.Subscribers() != 0 {
		t.Errorf("Subscribers() after Close = %d, want 0", src.Subscribers())
	}
	c.Close()
}

func TestUpdateStatusNotifies(t *testing.T) {
	src := storetest.NewSource()
	src.Set("2025-03-14", res("1", "2025-03-14", "12:00", model.StatusPending, 2))
	c := newController(t, src, eightTables(), "2025-03-14")
	ctx := context.Background()
	if err := c.SetScopeDate(ctx, "2025-03-14"); err != nil {
		t.Fatalf("SetScopeDate() unexpected error: %v", err)
	}
	calls := 0
	c.OnChange(func(Snapshot) { calls++ })

	if !c.UpdateStatus(ctx, "1", model.StatusConfirmed) {
		t.Fatal("UpdateStatus() = false, want true")
	}
	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
	if got := c.Snapshot().Stats.ActiveReservations; got != 1 {
		t.Errorf("ActiveReservations = %d, want 1", got)
	}

	src.FailUpdate = true
	if c.UpdateStatus(ctx, "1", model.StatusCancelled) {
		t.Fatal("UpdateStatus() = true on remote failure")
	}
	if calls != 1 {
		t.Errorf("listener notified on failed update")
	}
}

func TestRecent(t *testing.T) {
	recs := []model.ReservationRecord{
		res("a", "2025-03-14", "12:00", model.StatusConfirmed, 2),
		res("b", "2025-03-15", "09:00", model.StatusConfirmed, 2),
		res("c", "2025-03-14", "21:00", model.StatusConfirmed, 2),
		res("d", "2025-03-13", "23:00", model.StatusConfirmed, 2),
		res("e", "2025-03-14", "21:00", model.StatusConfirmed, 2),
		res("f", "2025-03-12", "10:00", model.StatusConfirmed, 2),
	}
	recs[2].CreatedAt = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	recs[4].CreatedAt = time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

	got := Recent(recs, RecentLimit)
	want := []string{"b", "e", "c", "a", "d"}
	if len(got) != len(want) {
		t.Fatalf("Recent() returned %d records, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Recent()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if recs[0].ID != "a" {
		t.Error("Recent() must not reorder its input")
	}
}
