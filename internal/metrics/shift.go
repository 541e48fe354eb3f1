package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// Shift is a named time window [Start, End) within a day, in minutes
// after midnight.  End may be 24*60 to include the last minute of the day.
type Shift struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// DefaultShifts returns the lunch and dinner windows used by the dashboard.
func DefaultShifts() []Shift {
	return []Shift{
		{Name: "lunch", Start: 11 * 60, End: 16 * 60},
		{Name: "dinner", Start: 16 * 60, End: 24 * 60},
	}
}

// NewShift builds a shift from HH:MM bounds.  "24:00" is accepted as an
// end bound.
func NewShift(name, start, end string) (Shift, error) {
	s, err := parseClock(start)
	if err != nil {
		return Shift{}, fmt.Errorf("shift %s start: %w", name, err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Shift{}, fmt.Errorf("shift %s end: %w", name, err)
	}
	if e <= s {
		return Shift{}, fmt.Errorf("shift %s: end %s must be after start %s", name, end, start)
	}
	return Shift{Name: name, Start: s, End: e}, nil
}

// ParseShifts parses a comma separated list of name=HH:MM-HH:MM entries,
// e.g. "lunch=11:00-16:00,dinner=16:00-24:00".
func ParseShifts(list string) ([]Shift, error) {
	var out []Shift
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, window, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid shift %q", part)
		}
		start, end, ok := strings.Cut(window, "-")
		if !ok {
			return nil, fmt.Errorf("invalid shift window %q", window)
		}
		s, err := NewShift(strings.TrimSpace(name), strings.TrimSpace(start), strings.TrimSpace(end))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Contains reports whether an HH:MM time falls inside the window.
// Unparseable times never match.
func (s Shift) Contains(hhmm string) bool {
	m, err := parseClock(hhmm)
	if err != nil {
		return false
	}
	return m >= s.Start && m < s.End
}

// parseClock converts HH:MM (seconds suffix tolerated, as MySQL TIME
// columns come back as HH:MM:SS) into minutes after midnight.
func parseClock(v string) (int, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	if h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	return h*60 + m, nil
}
