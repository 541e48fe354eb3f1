package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewChangeEvent(t *testing.T) {
	ev := NewChangeEvent("reservations", OpUpdate, "r1")
	if ev.ID == "" {
		t.Error("NewChangeEvent() should assign an id")
	}
	if ev.OccurredAt.IsZero() || ev.OccurredAt.Location() != time.UTC {
		t.Errorf("OccurredAt = %v, want current UTC time", ev.OccurredAt)
	}
	if other := NewChangeEvent("reservations", OpUpdate, "r1"); other.ID == ev.ID {
		t.Error("event ids should be unique")
	}
}

func TestDecodeChangeEvent(t *testing.T) {
	body, err := json.Marshal(NewChangeEvent("reservation_tables", OpInsert, "42"))
	if err != nil {
		t.Fatal(err)
	}
	ev, err := DecodeChangeEvent(body)
	if err != nil {
		t.Fatalf("DecodeChangeEvent() error: %v", err)
	}
	if ev.Table != "reservation_tables" || ev.Op != OpInsert || ev.RowID != "42" {
		t.Errorf("DecodeChangeEvent() = %+v", ev)
	}

	for _, bad := range []string{`{`, `{"op":"INSERT"}`, `[]`} {
		if _, err := DecodeChangeEvent([]byte(bad)); err == nil {
			t.Errorf("DecodeChangeEvent(%s) expected error", bad)
		}
	}
}

func TestDispatchFiltersTables(t *testing.T) {
	want := map[string]bool{"reservations": true}
	var got []string
	fn := func(ev ChangeEvent) { got = append(got, ev.Table) }

	for _, table := range []string{"reservations", "customers", "reservations"} {
		body, _ := json.Marshal(NewChangeEvent(table, OpUpdate, ""))
		if err := dispatch(body, want, fn); err != nil {
			t.Fatalf("dispatch() error: %v", err)
		}
	}
	if len(got) != 2 {
		t.Errorf("dispatched %v, want two reservations events", got)
	}
	if err := dispatch([]byte("nope"), want, fn); err == nil {
		t.Error("dispatch() should reject undecodable bodies")
	}
}

func TestSleepHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleep(ctx, time.Hour) {
		t.Error("sleep() should return false once the context is done")
	}
	if !sleep(context.Background(), time.Millisecond) {
		t.Error("sleep() should return true after the delay")
	}
}
