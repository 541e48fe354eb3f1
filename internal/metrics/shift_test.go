package metrics

import (
	"reflect"
	"testing"
)

func TestParseShifts(t *testing.T) {
	got, err := ParseShifts("lunch=11:00-16:00, dinner = 16:00-24:00,")
	if err != nil {
		t.Fatalf("ParseShifts() error: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultShifts()) {
		t.Errorf("ParseShifts() = %+v, want %+v", got, DefaultShifts())
	}

	for _, bad := range []string{
		"lunch",
		"lunch=11:00",
		"lunch=16:00-11:00",
		"late=23:00-24:30",
		"brunch=9h-11:00",
	} {
		if _, err := ParseShifts(bad); err == nil {
			t.Errorf("ParseShifts(%q) expected error", bad)
		}
	}

	empty, err := ParseShifts("")
	if err != nil || len(empty) != 0 {
		t.Errorf("ParseShifts(\"\") = %v, %v", empty, err)
	}
}

func TestShiftContains(t *testing.T) {
	dinner, err := NewShift("dinner", "16:00", "24:00")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		at   string
		want bool
	}{
		{"15:59", false},
		{"16:00", true},
		{"23:59", true},
		{"19:30:00", true},
		{"24:00", false},
		{"soon", false},
	}
	for _, tt := range tests {
		if got := dinner.Contains(tt.at); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.at, got, tt.want)
		}
	}
}
