// Package queue carries reservation change notifications over RabbitMQ.
// Writers publish a ChangeEvent to a fanout exchange after every committed
// change; each running server binds its own exclusive queue to it.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExchangeName is the fanout exchange change events are published to.
const ExchangeName = "reservations.changes"

// Change operations.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// ChangeEvent describes one committed row change.  It carries no row
// payload: subscribers reload what they need.
type ChangeEvent struct {
	ID         string    `json:"id"`
	Table      string    `json:"table"`
	Op         string    `json:"op"`
	RowID      string    `json:"row_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewChangeEvent stamps a change on table with a fresh id and the current
// UTC time.
func NewChangeEvent(table, op, rowID string) ChangeEvent {
	return ChangeEvent{
		ID:         uuid.NewString(),
		Table:      table,
		Op:         op,
		RowID:      rowID,
		OccurredAt: time.Now().UTC(),
	}
}

var errNoTable = errors.New("change event without table")

// DecodeChangeEvent parses a message body.  Events must name a table.
func DecodeChangeEvent(body []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Table == "" {
		return ChangeEvent{}, errNoTable
	}
	return ev, nil
}
